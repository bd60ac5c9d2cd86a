package services

import (
	"context"
	"time"

	"github.com/studyhall-app/studyhall-api/model"
	"gorm.io/gorm"
)

// StreakService maintains the consecutive-study-day counter on the user row.
type StreakService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStreakService creates a new streak service
func NewStreakService(db *gorm.DB) *StreakService {
	return &StreakService{
		db:  db,
		now: time.Now,
	}
}

// SetClock overrides the time source, used by tests
func (s *StreakService) SetClock(now func() time.Time) {
	s.now = now
}

// Touch applies the streak transition for a successful login and returns the
// resulting streak. last_study_date == yesterday continues the streak; a
// second login the same day changes nothing; any longer gap (or a first
// login ever) restarts at 1. last_study_date always becomes today.
func (s *StreakService) Touch(ctx context.Context, userID uint) (int, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return 0, err
	}

	today := s.now().Format(model.DateFormat)
	yesterday := s.now().AddDate(0, 0, -1).Format(model.DateFormat)

	newStreak := 1
	switch user.LastStudyDate {
	case yesterday:
		newStreak = user.CurrentStreak + 1
	case today:
		newStreak = user.CurrentStreak
	}

	err := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_study_date": today,
			"current_streak":  newStreak,
		}).Error
	if err != nil {
		return 0, err
	}

	return newStreak, nil
}
