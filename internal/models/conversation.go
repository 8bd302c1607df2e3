package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TitleMaxLen is the number of leading characters of the first message
// used as a conversation title before the ellipsis is appended.
const TitleMaxLen = 50

// Conversation represents one ordered thread of messages owned by a user.
type Conversation struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Title     string    `gorm:"size:200"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Messages []Message `gorm:"foreignKey:ConversationID"`
}

// BeforeCreate assigns an ID when the caller did not set one.
func (c *Conversation) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// DeriveTitle produces a conversation title from its first message:
// the whole message when it fits, otherwise the first TitleMaxLen
// characters with a literal ellipsis suffix.
func DeriveTitle(message string) string {
	runes := []rune(message)
	if len(runes) > TitleMaxLen {
		return string(runes[:TitleMaxLen]) + "..."
	}
	return message
}
