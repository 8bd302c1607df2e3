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
	"github.com/duleab/ai-agent/internal/llm"
	"github.com/duleab/ai-agent/internal/markdown"
)

type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

type ChatResponse struct {
	Response       string    `json:"response"`
	HTML           string    `json:"html"`
	ConversationID uuid.UUID `json:"conversation_id"`
	Timestamp      time.Time `json:"timestamp"`
}

// Chat handles POST /api/chat: resolve the conversation, replay its full
// history as generation context, call the backend, and persist both
// turns of the exchange in one commit. Nothing is written when
// validation or generation fails.
func (h *Handler) Chat(c *gin.Context) {
	actor := middleware.Actor(c)

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing message"})
		return
	}

	if !h.generator.Configured() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "LLM not configured"})
		return
	}

	var conversationID *uuid.UUID
	if req.ConversationID != "" {
		id, err := uuid.Parse(req.ConversationID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		conversationID = &id
	}

	conversation, created, err := h.chat.Resolve(actor, conversationID, req.Message)
	if err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		h.logger.Error("failed to resolve conversation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve conversation"})
		return
	}

	var history []llm.Turn
	if !created {
		history, err = h.chat.History(c.Request.Context(), conversation.ID)
		if err != nil {
			h.logger.Error("failed to assemble history", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chat history"})
			return
		}
	}

	response, err := h.generator.Generate(c.Request.Context(), history, req.Message)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "LLM not configured"})
			return
		}
		// Backend error text stays in the log; the caller gets a generic
		// message
		h.logger.Error("generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate response"})
		return
	}

	if err := h.chat.AppendExchange(c.Request.Context(), conversation, created, req.Message, response); err != nil {
		h.logger.Error("failed to persist exchange", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save conversation"})
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		Response:       response,
		HTML:           markdown.ToHTML(response),
		ConversationID: conversation.ID,
		Timestamp:      time.Now().UTC(),
	})
}
