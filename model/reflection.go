package model

import (
	"time"
)

// Reflection is the end-of-lesson writeup for a session. At most one row
// exists per session; saving again overwrites all three text fields wholesale.
type Reflection struct {
	ID             uint      `gorm:"primaryKey;column:reflection_id" json:"reflection_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	SessionID      uint      `gorm:"not null;uniqueIndex" json:"session_id"`
	GoalText       string    `gorm:"type:text" json:"goal_text"`
	UnderstoodText string    `gorm:"type:text" json:"understood_text"`
	QuestionText   string    `gorm:"type:text" json:"question_text"`

	// Relationships
	Session StudySession `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Reflection
func (Reflection) TableName() string {
	return "reflections"
}
