package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message roles. Alternation is expected but not enforced.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single turn inside a conversation.
// Messages are append-only and totally ordered by Timestamp.
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index"`
	Role           string    `gorm:"size:20;not null;check:role IN ('user', 'assistant')"`
	Content        string    `gorm:"type:text;not null"`
	Timestamp      time.Time `gorm:"index"`
	Tokens         int       `gorm:"default:0"`
}

// BeforeCreate assigns an ID when the caller did not set one.
func (m *Message) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// CountTokens is the naive whitespace word count recorded on assistant
// turns. Informational only.
func CountTokens(content string) int {
	return len(strings.Fields(content))
}
