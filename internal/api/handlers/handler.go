package handlers

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/duleab/ai-agent/internal/chat"
	"github.com/duleab/ai-agent/internal/config"
	"github.com/duleab/ai-agent/internal/llm"
)

// Handler is the core struct with all dependencies
type Handler struct {
	db        *gorm.DB
	chat      *chat.Service
	generator llm.Generator
	config    *config.Config
	logger    *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(db *gorm.DB, chatService *chat.Service, generator llm.Generator, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		db:        db,
		chat:      chatService,
		generator: generator,
		config:    cfg,
		logger:    logger,
	}
}
