package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered student
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	StudentCode   string         `gorm:"uniqueIndex;not null;type:varchar(50)" json:"student_code"`
	DisplayName   string         `gorm:"not null;type:varchar(100)" json:"display_name"`
	PasswordHash  string         `gorm:"not null" json:"-"` // Never expose password in JSON
	CurrentStreak int            `gorm:"not null;default:0" json:"current_streak"`
	LastStudyDate string         `gorm:"type:varchar(10)" json:"last_study_date,omitempty"` // YYYY-MM-DD, empty until first login
	TokenVersion  int            `gorm:"default:0" json:"-"`                                // Increment to invalidate all user tokens

	// Relationships
	Sessions       []StudySession      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Notes          []Note              `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Questions      []SharedQuestion    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TokenBlacklist []JWTTokenBlacklist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
