// Package chat implements the conversation assembly component: resolving
// or lazily creating the conversation a message belongs to, replaying its
// full history as generation context, and appending both turns of an
// exchange in a single transaction.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/duleab/ai-agent/internal/llm"
	"github.com/duleab/ai-agent/internal/models"
)

// ErrNotFound is returned when a conversation identifier does not resolve
// to a conversation owned by the acting user.
var ErrNotFound = errors.New("conversation not found")

// Service is the conversation assembly component. Safe for concurrent
// use; all mutable state lives in the database and the optional cache.
type Service struct {
	db     *gorm.DB
	cache  *historyCache
	logger *zap.Logger
}

// NewService builds the assembly service. redisClient may be nil, which
// disables history caching.
func NewService(db *gorm.DB, redisClient *redis.Client, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		cache:  &historyCache{client: redisClient},
		logger: logger,
	}
}

// Resolve returns the conversation a new message should append to.
//
// With an identifier, the conversation must exist and belong to actor;
// otherwise ErrNotFound is reported and nothing is created. Without one,
// an unsaved conversation titled from the initiating message is returned;
// it is persisted later, in the same commit as the first exchange.
func (s *Service) Resolve(actor models.User, conversationID *uuid.UUID, message string) (*models.Conversation, bool, error) {
	if conversationID != nil {
		var conversation models.Conversation
		err := s.db.Where("id = ? AND user_id = ?", conversationID, actor.ID).First(&conversation).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrNotFound
		}
		if err != nil {
			return nil, false, fmt.Errorf("failed to load conversation: %w", err)
		}
		return &conversation, false, nil
	}

	conversation := &models.Conversation{
		UserID: actor.ID,
		Title:  models.DeriveTitle(message),
	}
	return conversation, true, nil
}

// History replays every prior turn of the conversation as role/content
// pairs, oldest first. The whole thread is always returned: no window,
// no summarization. Context therefore grows without bound as the
// conversation lengthens; that cost is deliberate.
func (s *Service) History(ctx context.Context, conversationID uuid.UUID) ([]llm.Turn, error) {
	if cached, err := s.cache.get(ctx, conversationID); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		s.logger.Warn("history cache read failed", zap.Error(err))
	}

	var messages []models.Message
	if err := s.db.Where("conversation_id = ?", conversationID).
		Order("timestamp ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch conversation history: %w", err)
	}

	turns := make([]llm.Turn, 0, len(messages))
	for _, msg := range messages {
		turns = append(turns, llm.Turn{Role: msg.Role, Content: msg.Content})
	}

	if len(turns) > 0 {
		if err := s.cache.fill(ctx, conversationID, turns); err != nil {
			s.logger.Warn("history cache fill failed", zap.Error(err))
		}
	}
	return turns, nil
}

// AppendExchange persists the user turn and the assistant turn as one
// commit, creating the conversation first when it is new and advancing
// its updated_at. Any failure rolls the whole exchange back.
func (s *Service) AppendExchange(ctx context.Context, conversation *models.Conversation, created bool, userText, assistantText string) error {
	now := time.Now().UTC()

	userMsg := models.Message{
		Role:      models.RoleUser,
		Content:   userText,
		Timestamp: now,
	}
	assistantMsg := models.Message{
		Role:      models.RoleAssistant,
		Content:   assistantText,
		Timestamp: now.Add(time.Millisecond),
		Tokens:    models.CountTokens(assistantText),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if created {
			if err := tx.Create(conversation).Error; err != nil {
				return fmt.Errorf("failed to create conversation: %w", err)
			}
		}

		userMsg.ConversationID = conversation.ID
		assistantMsg.ConversationID = conversation.ID

		if err := tx.Create(&userMsg).Error; err != nil {
			return fmt.Errorf("failed to save user message: %w", err)
		}
		if err := tx.Create(&assistantMsg).Error; err != nil {
			return fmt.Errorf("failed to save assistant message: %w", err)
		}

		if err := tx.Model(conversation).Update("updated_at", assistantMsg.Timestamp).Error; err != nil {
			return fmt.Errorf("failed to touch conversation: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if cacheErr := s.cache.append(ctx, conversation.ID,
		llm.Turn{Role: userMsg.Role, Content: userMsg.Content},
		llm.Turn{Role: assistantMsg.Role, Content: assistantMsg.Content},
	); cacheErr != nil {
		s.logger.Warn("history cache append failed", zap.Error(cacheErr))
	}
	return nil
}

// ConversationSummary is one row of the conversation listing.
type ConversationSummary struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int64     `json:"message_count"`
}

// List returns the actor's conversations ordered most recently updated
// first, each with its message count.
func (s *Service) List(actor models.User) ([]ConversationSummary, error) {
	var conversations []models.Conversation
	if err := s.db.Where("user_id = ?", actor.ID).
		Order("updated_at DESC").
		Find(&conversations).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch conversations: %w", err)
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, conversation := range conversations {
		var count int64
		if err := s.db.Model(&models.Message{}).
			Where("conversation_id = ?", conversation.ID).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count messages: %w", err)
		}
		summaries = append(summaries, ConversationSummary{
			ID:           conversation.ID,
			Title:        conversation.Title,
			CreatedAt:    conversation.CreatedAt,
			UpdatedAt:    conversation.UpdatedAt,
			MessageCount: count,
		})
	}
	return summaries, nil
}

// Get loads one conversation owned by the actor together with its
// messages in timestamp order. ErrNotFound when the identifier does not
// resolve for this actor.
func (s *Service) Get(actor models.User, conversationID uuid.UUID) (*models.Conversation, []models.Message, error) {
	var conversation models.Conversation
	err := s.db.Where("id = ? AND user_id = ?", conversationID, actor.ID).First(&conversation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	var messages []models.Message
	if err := s.db.Where("conversation_id = ?", conversationID).
		Order("timestamp ASC").
		Find(&messages).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return &conversation, messages, nil
}
