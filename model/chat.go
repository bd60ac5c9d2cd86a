package model

import (
	"time"
)

// MessageSender identifies who authored a chat message
type MessageSender string

const (
	SenderUser MessageSender = "user"
	SenderAI   MessageSender = "ai"
)

// ChatMessage is one entry in a session's transcript. Messages are append-only
// and displayed in created_at ascending order.
type ChatMessage struct {
	ID        uint          `gorm:"primaryKey;column:message_id" json:"message_id"`
	CreatedAt time.Time     `json:"created_at"`
	SessionID uint          `gorm:"not null;index" json:"session_id"`
	Sender    MessageSender `gorm:"type:varchar(10);not null" json:"sender"`
	Content   string        `gorm:"type:text;not null" json:"content"`

	// Relationships
	Session StudySession `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for ChatMessage
func (ChatMessage) TableName() string {
	return "chat_messages"
}
