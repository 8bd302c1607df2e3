package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Status handles GET /api/status.
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "online",
		"llm_configured": h.generator.Configured(),
		"agent_type":     h.config.AgentType,
		"features":       []string{"auth", "database", "websocket", "markdown"},
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
}
