package model

import (
	"time"
)

// DateFormat is the wire and storage format for study dates
const DateFormat = "2006-01-02"

const (
	// MinPeriod and MaxPeriod bound the class period of a session
	MinPeriod = 1
	MaxPeriod = 12
)

// StudySession represents one lesson: one student studying one subject on one
// date and period. The (user, subject, study_date, period) tuple is treated as
// a natural dedup key for the "current session" lookup but is not enforced
// unique at the storage level; first match wins.
type StudySession struct {
	ID        uint      `gorm:"primaryKey;column:session_id" json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	SubjectID uint      `gorm:"not null;index" json:"subject_id"`
	StudyDate string    `gorm:"type:varchar(10);not null;index" json:"study_date"` // YYYY-MM-DD
	Period    int       `gorm:"not null;default:1" json:"period"`
	UnitName  string    `gorm:"type:varchar(100)" json:"unit_name"`

	// Relationships
	User       User             `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Subject    Subject          `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	Messages   []ChatMessage    `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
	Notes      []Note           `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
	Questions  []SharedQuestion `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
	Reflection *Reflection      `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"reflection,omitempty"`
}

// TableName specifies the table name for StudySession
func (StudySession) TableName() string {
	return "class_sessions"
}
