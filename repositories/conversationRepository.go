package repositories

import (
	"ClinicQueue/apperrors"
	"ClinicQueue/cache"
	"ClinicQueue/database"
	"ClinicQueue/events"
	"ClinicQueue/models"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConversationRepository struct {
	cache *cache.Cache
	feed  *events.Feed
}

func NewConversationRepository(cache *cache.Cache, feed *events.Feed) *ConversationRepository {
	return &ConversationRepository{cache: cache, feed: feed}
}

// Insert persists a new conversation, assigning its id.
func (r *ConversationRepository) Insert(ctx context.Context, conversation *models.Conversation) error {
	if conversation.ID == "" {
		conversation.ID = uuid.New().String()
	}
	if err := database.DB.WithContext(ctx).Create(conversation).Error; err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	r.feed.Publish(ctx, events.TopicConversations)
	return nil
}

// GetByID loads one conversation.
func (r *ConversationRepository) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := database.DB.WithContext(ctx).First(&conversation, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conversation, nil
}

// List returns all conversations, most recent activity first.
func (r *ConversationRepository) List(ctx context.Context) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := database.DB.WithContext(ctx).
		Order("last_message_time DESC NULLS LAST").
		Find(&conversations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return conversations, nil
}

// AppendMessage stores a message in a conversation.
func (r *ConversationRepository) AppendMessage(ctx context.Context, message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if err := database.DB.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	r.feed.Publish(ctx, events.TopicConversations)
	return nil
}

// ListMessages returns the oldest `limit` messages of a conversation in
// chronological order (the assistant context window).
func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID string, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := database.DB.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// TouchLastMessage updates the conversation summary fields after a reply.
func (r *ConversationRepository) TouchLastMessage(ctx context.Context, conversationID, lastMessage string, at time.Time) error {
	err := database.DB.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"last_message":      lastMessage,
			"last_message_time": at,
			"unread_count":      0,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}
	r.feed.Publish(ctx, events.TopicConversations)
	return nil
}
