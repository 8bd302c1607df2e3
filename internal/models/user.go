package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GuestUsername is the seeded bootstrap identity used as the implicit
// actor on the chat and conversation endpoints.
const GuestUsername = "guest"

// User represents the user model
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	Username     string    `gorm:"uniqueIndex;size:80;not null"`
	Email        string    `gorm:"uniqueIndex;size:120;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	APIKey       string    `gorm:"uniqueIndex;size:64;not null"`
	CreatedAt    time.Time

	Conversations []Conversation `gorm:"foreignKey:UserID"`
}

// BeforeCreate assigns an ID when the caller did not set one.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
