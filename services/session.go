package services

import (
	"context"
	"time"

	"github.com/studyhall-app/studyhall-api/model"
	"gorm.io/gorm"
)

// SessionService owns the lesson-session ledger: find-or-create-for-today
// semantics, ownership-checked lookups, and the annotated history listing.
type SessionService struct {
	db *gorm.DB
}

// NewSessionService creates a new session service
func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{db: db}
}

// CreateSessionInput carries the fields for a new session
type CreateSessionInput struct {
	SubjectID uint
	StudyDate string
	Period    int
	UnitName  string
}

// SessionUpdate models a partial update. A nil field means "not supplied",
// which is distinct from supplying an empty value.
type SessionUpdate struct {
	SubjectID *uint   `json:"subject_id"`
	Period    *int    `json:"period"`
	UnitName  *string `json:"unit_name"`
}

// HistoryEntry is one row of the session history listing
type HistoryEntry struct {
	SessionID     uint      `json:"session_id"`
	StudyDate     string    `json:"study_date"`
	Period        int       `json:"period"`
	UnitName      string    `json:"unit_name"`
	CreatedAt     time.Time `json:"created_at"`
	SubjectID     uint      `json:"subject_id"`
	SubjectName   string    `json:"subject_name"`
	MessageCount  int64     `json:"message_count"`
	HasReflection bool      `json:"has_reflection"`
}

// Create validates and persists a new session, returning it with its subject
func (s *SessionService) Create(ctx context.Context, userID uint, input CreateSessionInput) (*model.StudySession, error) {
	if input.SubjectID == 0 {
		return nil, ErrInvalidSubject
	}
	if input.Period < model.MinPeriod || input.Period > model.MaxPeriod {
		return nil, ErrInvalidPeriod
	}
	if input.StudyDate == "" {
		input.StudyDate = time.Now().Format(model.DateFormat)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Subject{}).
		Where("subject_id = ?", input.SubjectID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrInvalidSubject
	}

	session := model.StudySession{
		UserID:    userID,
		SubjectID: input.SubjectID,
		StudyDate: input.StudyDate,
		Period:    input.Period,
		UnitName:  input.UnitName,
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, err
	}

	return s.byID(ctx, session.ID)
}

// GetOrCreateCurrent returns the first session matching the natural key
// (user, subject, date, period), creating one if absent. On a hit the
// supplied unit name is ignored. The lookup-then-insert is not atomic;
// two concurrent identical calls can both insert, which is accepted under
// the single-writer-per-user assumption.
func (s *SessionService) GetOrCreateCurrent(ctx context.Context, userID uint, input CreateSessionInput) (*model.StudySession, bool, error) {
	if input.StudyDate == "" {
		input.StudyDate = time.Now().Format(model.DateFormat)
	}
	if input.Period == 0 {
		input.Period = model.MinPeriod
	}

	var existing model.StudySession
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND subject_id = ? AND study_date = ? AND period = ?",
			userID, input.SubjectID, input.StudyDate, input.Period).
		First(&existing).Error
	if err == nil {
		session, lookupErr := s.byID(ctx, existing.ID)
		return session, false, lookupErr
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, err
	}

	session, err := s.Create(ctx, userID, input)
	if err != nil {
		return nil, false, err
	}
	return session, true, nil
}

// Get returns a session owned by userID, or ErrSessionNotFound
func (s *SessionService) Get(ctx context.Context, userID, sessionID uint) (*model.StudySession, error) {
	session, err := s.byID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Authorize resolves a session for a write operation. Unlike Get it
// distinguishes an absent session from one owned by someone else.
func (s *SessionService) Authorize(ctx context.Context, userID, sessionID uint) (*model.StudySession, error) {
	session, err := s.byID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrSessionForbidden
	}
	return session, nil
}

// ListHistory returns sessions newest lesson first, each annotated with its
// message count and whether a reflection was recorded, plus a total for
// pagination.
func (s *SessionService) ListHistory(ctx context.Context, userID uint, limit, offset int) ([]HistoryEntry, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.StudySession{}).
		Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	entries := []HistoryEntry{}
	err := s.db.WithContext(ctx).
		Table("class_sessions").
		Select(`class_sessions.session_id,
			class_sessions.study_date,
			class_sessions.period,
			class_sessions.unit_name,
			class_sessions.created_at,
			subjects.subject_id,
			subjects.subject_name,
			(SELECT COUNT(*) FROM chat_messages WHERE chat_messages.session_id = class_sessions.session_id) AS message_count,
			(SELECT COUNT(*) FROM reflections WHERE reflections.session_id = class_sessions.session_id) > 0 AS has_reflection`).
		Joins("JOIN subjects ON subjects.subject_id = class_sessions.subject_id").
		Where("class_sessions.user_id = ?", userID).
		Order("class_sessions.study_date DESC, class_sessions.period DESC").
		Limit(limit).
		Offset(offset).
		Scan(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// Update applies a partial update to an owned session. Only fields present
// in the update are touched; an empty update is rejected.
func (s *SessionService) Update(ctx context.Context, userID, sessionID uint, update SessionUpdate) (*model.StudySession, error) {
	if _, err := s.Get(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if update.SubjectID != nil {
		var count int64
		if err := s.db.WithContext(ctx).Model(&model.Subject{}).
			Where("subject_id = ?", *update.SubjectID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrInvalidSubject
		}
		fields["subject_id"] = *update.SubjectID
	}
	if update.Period != nil {
		if *update.Period < model.MinPeriod || *update.Period > model.MaxPeriod {
			return nil, ErrInvalidPeriod
		}
		fields["period"] = *update.Period
	}
	if update.UnitName != nil {
		fields["unit_name"] = *update.UnitName
	}

	if len(fields) == 0 {
		return nil, ErrEmptyUpdate
	}

	if err := s.db.WithContext(ctx).Model(&model.StudySession{}).
		Where("session_id = ?", sessionID).Updates(fields).Error; err != nil {
		return nil, err
	}

	return s.byID(ctx, sessionID)
}

func (s *SessionService) byID(ctx context.Context, sessionID uint) (*model.StudySession, error) {
	var session model.StudySession
	err := s.db.WithContext(ctx).Preload("Subject").First(&session, sessionID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}
