package handlers

import (
	"ClinicQueue/services"
	"time"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	service *services.ChatService
}

func NewChatHandler(service *services.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// StartConversation opens a new inbox thread.
func (h *ChatHandler) StartConversation(c *gin.Context) {
	var req struct {
		PatientName  string `json:"patient_name"`
		PatientPhone string `json:"patient_phone"`
		Source       string `json:"source"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.PatientName == "" {
		c.JSON(400, gin.H{"error": "Invalid request body"})
		return
	}

	conversation, err := h.service.StartConversation(c.Request.Context(), req.PatientName, req.PatientPhone, req.Source)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(201, conversation)
}

// ListConversations returns the inbox, most recent activity first.
func (h *ChatHandler) ListConversations(c *gin.Context) {
	conversations, err := h.service.Conversations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, conversations)
}

// GetMessages returns one thread's visible history.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	messages, err := h.service.Messages(c.Request.Context(), c.Param("conversation_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, messages)
}

// SendMessage relays a patient message to the assistant and returns its
// reply, including any appointment it booked.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(400, gin.H{"error": "Invalid request body"})
		return
	}

	reply, err := h.service.HandleMessage(c.Request.Context(), c.Param("conversation_id"), req.Message, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, reply)
}
