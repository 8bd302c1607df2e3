// Package ws implements the socket streaming channel. Responses are
// generated in full, then emitted word by word with a fixed pacing delay.
// The pacing is a compatibility shim for perceived typing effect, not
// true incremental generation.
package ws

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/duleab/ai-agent/internal/llm"
)

// Socket events. Clients send chat_message; everything else flows
// server to client.
const (
	EventStatus       = "status"
	EventError        = "error"
	EventChatMessage  = "chat_message"
	EventChatChunk    = "chat_chunk"
	EventChatComplete = "chat_complete"
)

// Frame is the wire envelope for every socket event in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ChatMessageData is the payload of a client chat_message event. Token
// is accepted but not validated.
type ChatMessageData struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// Handler owns one upgrade endpoint; each accepted connection gets its
// own session goroutine.
type Handler struct {
	generator llm.Generator
	delay     time.Duration
	upgrader  websocket.Upgrader
	logger    *zap.Logger
}

// NewHandler builds the socket handler. delay is the pause between
// consecutive chunk emissions.
func NewHandler(generator llm.Generator, delay time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		generator: generator,
		delay:     delay,
		upgrader: websocket.Upgrader{
			// The HTTP API is open to any origin; the socket matches
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Serve upgrades the request and runs the session until the connection
// drops. The status acknowledgment is always the first frame emitted.
func (h *Handler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if err := emit(conn, EventStatus, map[string]string{"message": "Connected to AI Agent"}); err != nil {
		return
	}

	for {
		var frame Frame
		if err := conn.ReadJSON(&frame); err != nil {
			// Normal teardown; undelivered chunks are simply dropped
			return
		}
		if frame.Event != EventChatMessage {
			continue
		}

		var data ChatMessageData
		if len(frame.Data) > 0 {
			if err := json.Unmarshal(frame.Data, &data); err != nil {
				if emitErr := emit(conn, EventError, map[string]string{"message": "Invalid payload"}); emitErr != nil {
					return
				}
				continue
			}
		}

		if err := h.handleChatMessage(c, conn, data); err != nil {
			return
		}
	}
}

// handleChatMessage runs one chat exchange over the socket. Unlike the
// HTTP path it neither loads nor persists conversation state: generation
// starts from an empty history every time.
func (h *Handler) handleChatMessage(c *gin.Context, conn *websocket.Conn, data ChatMessageData) error {
	if data.Message == "" {
		return emit(conn, EventError, map[string]string{"message": "No message provided"})
	}

	if !h.generator.Configured() {
		return emit(conn, EventError, map[string]string{"message": "LLM not configured"})
	}

	response, err := h.generator.Generate(c.Request.Context(), nil, data.Message)
	if err != nil {
		h.logger.Error("generation failed", zap.Error(err))
		return emit(conn, EventError, map[string]string{"message": "Failed to generate response"})
	}

	for _, chunk := range Chunks(response) {
		if err := emit(conn, EventChatChunk, map[string]string{"chunk": chunk}); err != nil {
			return err
		}
		time.Sleep(h.delay)
	}

	return emit(conn, EventChatComplete, map[string]string{"message": "Response complete"})
}

// Chunks partitions a response into the units emitted over the socket:
// whitespace-delimited words, each with a trailing space.
func Chunks(text string) []string {
	words := strings.Fields(text)
	chunks := make([]string, 0, len(words))
	for _, word := range words {
		chunks = append(chunks, word+" ")
	}
	return chunks
}

func emit(conn *websocket.Conn, event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return conn.WriteJSON(Frame{Event: event, Data: payload})
}
