package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duleab/ai-agent/web"
)

// Home handles GET /, the HTML documentation page.
func (h *Handler) Home(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", web.DocsHTML)
}
