package services

import (
	"ClinicQueue/apperrors"
	"ClinicQueue/clients"
	"ClinicQueue/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// The assistant context window: only this many of the oldest messages are
// replayed into the model.
const chatHistoryLimit = 20

// ChatModel produces assistant replies. Implemented by clients.OpenAIClient.
type ChatModel interface {
	ChatCompletion(ctx context.Context, req clients.ChatRequest) (*clients.AssistantMessage, error)
}

// ConversationStore is the inbox surface the assistant needs. Implemented by
// repositories.ConversationRepository.
type ConversationStore interface {
	Insert(ctx context.Context, conversation *models.Conversation) error
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	List(ctx context.Context) ([]models.Conversation, error)
	AppendMessage(ctx context.Context, message *models.Message) error
	ListMessages(ctx context.Context, conversationID string, limit int) ([]models.Message, error)
	TouchLastMessage(ctx context.Context, conversationID, lastMessage string, at time.Time) error
}

// Booker is the slice of BookingService the assistant uses.
type Booker interface {
	Book(ctx context.Context, req BookingRequest, now time.Time) (*models.Appointment, error)
	AvailableSlots(ctx context.Context, now time.Time) ([]time.Time, error)
}

// ChatReply is the assistant's answer to one patient message.
type ChatReply struct {
	Response          string              `json:"response"`
	AppointmentBooked *models.Appointment `json:"appointment_booked,omitempty"`
}

// ChatService runs the Arabic booking assistant over the inbox.
type ChatService struct {
	model         ChatModel
	conversations ConversationStore
	booking       Booker
}

func NewChatService(model ChatModel, conversations ConversationStore, booking Booker) *ChatService {
	return &ChatService{model: model, conversations: conversations, booking: booking}
}

// StartConversation opens a new inbox thread for a patient.
func (s *ChatService) StartConversation(ctx context.Context, patientName, patientPhone, source string) (*models.Conversation, error) {
	if source == "" {
		source = "whatsapp"
	}
	conversation := &models.Conversation{
		PatientName:  patientName,
		PatientPhone: patientPhone,
		Source:       source,
		IsAIHandled:  true,
	}
	if err := s.conversations.Insert(ctx, conversation); err != nil {
		return nil, apperrors.Persistence("create conversation", err)
	}
	return conversation, nil
}

// Conversations lists the inbox, most recent activity first.
func (s *ChatService) Conversations(ctx context.Context) ([]models.Conversation, error) {
	return s.conversations.List(ctx)
}

// Messages returns the visible history of one thread.
func (s *ChatService) Messages(ctx context.Context, conversationID string) ([]models.Message, error) {
	if _, err := s.conversations.GetByID(ctx, conversationID); err != nil {
		return nil, err
	}
	return s.conversations.ListMessages(ctx, conversationID, chatHistoryLimit)
}

// HandleMessage stores the patient's message, asks the model for a reply,
// executes any booking the model requested, and stores the reply. Booking
// failures never fail the exchange; they become an apologetic reply.
func (s *ChatService) HandleMessage(ctx context.Context, conversationID, message string, now time.Time) (*ChatReply, error) {
	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	history, err := s.conversations.ListMessages(ctx, conversationID, chatHistoryLimit)
	if err != nil {
		return nil, apperrors.Persistence("list conversation messages", err)
	}

	if err := s.conversations.AppendMessage(ctx, &models.Message{
		ConversationID: conversationID,
		Sender:         models.SenderPatient,
		Content:        message,
	}); err != nil {
		return nil, apperrors.Persistence("store patient message", err)
	}

	slots, err := s.booking.AvailableSlots(ctx, now)
	if err != nil {
		return nil, err
	}

	messages := []clients.ChatMessage{{Role: "system", Content: systemPrompt(slots)}}
	for _, msg := range history {
		role := "assistant"
		if msg.Sender == models.SenderPatient {
			role = "user"
		}
		messages = append(messages, clients.ChatMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, clients.ChatMessage{Role: "user", Content: message})

	assistant, err := s.model.ChatCompletion(ctx, clients.ChatRequest{
		Messages:   messages,
		Tools:      []clients.Tool{bookAppointmentTool()},
		ToolChoice: "auto",
	})
	if err != nil {
		return nil, fmt.Errorf("assistant completion failed: %w", err)
	}

	reply := &ChatReply{Response: assistant.Content}
	for _, call := range assistant.ToolCalls {
		if call.Function.Name != "book_appointment" {
			continue
		}
		booked, response := s.bookFromToolCall(ctx, conversation, call.Function.Arguments, now)
		reply.Response = response
		reply.AppointmentBooked = booked
	}

	if err := s.conversations.AppendMessage(ctx, &models.Message{
		ConversationID: conversationID,
		Sender:         models.SenderAI,
		Content:        reply.Response,
	}); err != nil {
		return nil, apperrors.Persistence("store assistant message", err)
	}
	if err := s.conversations.TouchLastMessage(ctx, conversationID, reply.Response, now); err != nil {
		log.Printf("Failed to update conversation %s after reply: %v", conversationID, err)
	}

	return reply, nil
}

func (s *ChatService) bookFromToolCall(ctx context.Context, conversation *models.Conversation, arguments string, now time.Time) (*models.Appointment, string) {
	var args struct {
		Time        string `json:"time"`
		IsFastTrack bool   `json:"is_fast_track"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		log.Printf("Assistant sent malformed booking arguments: %v", err)
		return nil, bookingFailedReply
	}

	appointment, err := s.booking.Book(ctx, BookingRequest{
		Time:        args.Time,
		PatientName: conversation.PatientName,
		Phone:       conversation.PatientPhone,
		IsFastTrack: args.IsFastTrack,
	}, now)
	if err != nil {
		var unavailable *apperrors.SlotUnavailableError
		if errors.As(err, &unavailable) {
			return nil, fmt.Sprintf("عذراً، هذا الموعد غير متاح. المواعيد المتاحة اليوم: %s",
				formatSlots(unavailable.Available))
		}
		log.Printf("Assistant booking failed: %v", err)
		return nil, bookingFailedReply
	}

	visitType := "كشف عادي"
	if appointment.IsFastTrack {
		visitType = "مسار سريع"
	}
	return appointment, fmt.Sprintf("تم حجز موعدك بنجاح! 🎉\n\nتفاصيل الموعد:\n- الوقت: %s\n- النوع: %s\n\nسنراك في الموعد!",
		appointment.ScheduledTime.Format("15:04"), visitType)
}

const bookingFailedReply = "عذراً، حدث خطأ أثناء حجز الموعد. يرجى المحاولة مرة أخرى."

func systemPrompt(slots []time.Time) string {
	available := formatSlots(slots)
	if available == "" {
		available = "لا توجد مواعيد متاحة"
	}
	return fmt.Sprintf(`أنت مساعد طبي ذكي في عيادة طبية. تتحدث العربية بطلاقة.

معلومات مهمة:
- سعر الكشف العادي: 350 جنيه
- سعر الكشف الشامل: 500 جنيه
- سعر المتابعة: 200 جنيه
- المواعيد المتاحة اليوم: %s

يمكنك:
1. الإجابة على أسئلة المرضى عن الأسعار والمواعيد
2. حجز مواعيد جديدة للمرضى
3. تأكيد أو إلغاء المواعيد

عند حجز موعد، استخدم الأداة book_appointment مع الوقت المطلوب.
كن ودوداً ومحترفاً في ردودك.`, available)
}

func formatSlots(slots []time.Time) string {
	parts := make([]string, 0, len(slots))
	for _, slot := range slots {
		parts = append(parts, slot.Format("15:04"))
	}
	return strings.Join(parts, ", ")
}

func bookAppointmentTool() clients.Tool {
	return clients.Tool{
		Type: "function",
		Function: clients.ToolFunction{
			Name:        "book_appointment",
			Description: "Book a new appointment for the patient",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"time": {
						"type": "string",
						"description": "The appointment time in HH:MM format (24-hour)"
					},
					"is_fast_track": {
						"type": "boolean",
						"description": "Whether this is a fast-track appointment"
					}
				},
				"required": ["time"]
			}`),
		},
	}
}
