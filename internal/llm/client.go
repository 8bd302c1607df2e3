package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/schema"
)

// ErrNotConfigured is returned by Generate when no backend credential was
// supplied at startup. There is no retry and no fallback backend.
var ErrNotConfigured = errors.New("LLM not configured")

const defaultModel = "gemini-2.0-flash-exp"

// Turn is one role-tagged entry of the replayed conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator produces assistant text for a user utterance given prior
// role-tagged history. Implementations must be safe for concurrent use.
type Generator interface {
	// Generate returns the assistant response for message, with history
	// replayed oldest first before it.
	Generate(ctx context.Context, history []Turn, message string) (string, error)

	// Configured reports whether a backend credential is present.
	Configured() bool
}

// Client is the immutable generation adapter constructed once at process
// start. A Client without a credential is still a valid value; its
// Generate always fails with ErrNotConfigured.
type Client struct {
	model   llms.Model
	persona string
	prompt  string
	timeout time.Duration
}

// New builds the generation adapter for the given persona. An empty
// apiKey yields an unconfigured adapter rather than an error so the rest
// of the API can keep serving.
func New(ctx context.Context, apiKey, persona string, timeout time.Duration) (*Client, error) {
	c := &Client{
		persona: persona,
		prompt:  SystemPrompt(persona),
		timeout: timeout,
	}
	if apiKey == "" {
		return c, nil
	}

	model, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(defaultModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generation backend: %w", err)
	}
	c.model = model
	return c, nil
}

// Configured reports whether a backend credential was supplied.
func (c *Client) Configured() bool {
	return c.model != nil
}

// Persona returns the active persona selector.
func (c *Client) Persona() string {
	return c.persona
}

// Generate sends the fixed system instruction, the full replayed history
// and the new utterance to the backend and returns the assistant text.
// The call is bounded by the configured timeout.
func (c *Client) Generate(ctx context.Context, history []Turn, message string) (string, error) {
	if c.model == nil {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	content := make([]llms.MessageContent, 0, len(history)+2)
	content = append(content, llms.TextParts(schema.ChatMessageTypeSystem, c.prompt))
	for _, turn := range history {
		content = append(content, llms.TextParts(chatMessageType(turn.Role), turn.Content))
	}
	content = append(content, llms.TextParts(schema.ChatMessageTypeHuman, message))

	resp, err := c.model.GenerateContent(ctx, content)
	if err != nil {
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("generation backend returned no choices")
	}
	return resp.Choices[0].Content, nil
}

func chatMessageType(role string) schema.ChatMessageType {
	if role == "assistant" {
		return schema.ChatMessageTypeAI
	}
	return schema.ChatMessageTypeHuman
}
