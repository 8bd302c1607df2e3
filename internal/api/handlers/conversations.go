package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/duleab/ai-agent/internal/api/middleware"
	"github.com/duleab/ai-agent/internal/chat"
)

type conversationHeader struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type messagePayload struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ListConversations handles GET /api/conversations, most recently
// updated first.
func (h *Handler) ListConversations(c *gin.Context) {
	actor := middleware.Actor(c)

	summaries, err := h.chat.List(actor)
	if err != nil {
		h.logger.Error("failed to list conversations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": summaries})
}

// GetConversation handles GET /api/conversations/:id.
func (h *Handler) GetConversation(c *gin.Context) {
	actor := middleware.Actor(c)

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}

	conversation, messages, err := h.chat.Get(actor, conversationID)
	if err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		h.logger.Error("failed to load conversation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversation"})
		return
	}

	payload := make([]messagePayload, 0, len(messages))
	for _, msg := range messages {
		payload = append(payload, messagePayload{
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation": conversationHeader{
			ID:        conversation.ID,
			Title:     conversation.Title,
			CreatedAt: conversation.CreatedAt,
		},
		"messages": payload,
	})
}
