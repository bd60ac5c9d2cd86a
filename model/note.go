package model

import (
	"time"
)

// NoteStatus tracks whether a note's question has been resolved
type NoteStatus string

const (
	NoteStatusUnsolved NoteStatus = "unsolved"
	NoteStatusSolved   NoteStatus = "solved"
)

// MaxNoteLength is the note content cap, counted in characters not bytes
const MaxNoteLength = 200

// Note is a personal memo tied to a session, visible only to its owner.
// Notes are hard-deleted on explicit owner request.
type Note struct {
	ID        uint       `gorm:"primaryKey;column:note_id" json:"note_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	SessionID uint       `gorm:"not null;index" json:"session_id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	Content   string     `gorm:"type:varchar(200);not null" json:"content"`
	Status    NoteStatus `gorm:"type:varchar(10);not null;default:'unsolved'" json:"status"`

	// Relationships
	Session StudySession `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
	User    User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Note
func (Note) TableName() string {
	return "class_notes"
}

// IsValidNoteStatus reports whether s is one of the accepted note statuses
func IsValidNoteStatus(s string) bool {
	return s == string(NoteStatusUnsolved) || s == string(NoteStatusSolved)
}
