package model

import (
	"time"
)

// MaxQuestionLength is the shared question content cap, counted in characters
const MaxQuestionLength = 50

// SharedQuestion is a short question tied to a session. Unlike notes it is
// read-visible to everyone, including unauthenticated callers; only the owner
// may delete it.
type SharedQuestion struct {
	ID        uint      `gorm:"primaryKey;column:question_id" json:"question_id"`
	CreatedAt time.Time `json:"created_at"`
	SessionID uint      `gorm:"not null;index" json:"session_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Content   string    `gorm:"type:varchar(50);not null" json:"content"`

	// Relationships
	Session StudySession `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
	User    User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for SharedQuestion
func (SharedQuestion) TableName() string {
	return "shared_questions"
}
