package services

import (
	"context"
	"testing"
	"time"

	"github.com/studyhall-app/studyhall-api/model"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTouchFirstLogin(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "S001")

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := NewStreakService(db)
	svc.SetClock(fixedClock(now))

	streak, err := svc.Touch(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Touch failed: %v", err)
	}
	if streak != 1 {
		t.Errorf("expected streak 1 on first login, got %d", streak)
	}

	var got model.User
	if err := db.First(&got, user.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if got.LastStudyDate != "2026-03-10" {
		t.Errorf("expected last_study_date 2026-03-10, got %q", got.LastStudyDate)
	}
}

func TestTouchConsecutiveDay(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "S001")

	db.Model(user).Updates(map[string]interface{}{
		"current_streak":  3,
		"last_study_date": "2026-03-09",
	})

	svc := NewStreakService(db)
	svc.SetClock(fixedClock(time.Date(2026, 3, 10, 7, 30, 0, 0, time.UTC)))

	streak, err := svc.Touch(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Touch failed: %v", err)
	}
	if streak != 4 {
		t.Errorf("expected streak 4 after consecutive-day login, got %d", streak)
	}
}

func TestTouchSameDayIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "S001")

	db.Model(user).Updates(map[string]interface{}{
		"current_streak":  5,
		"last_study_date": "2026-03-10",
	})

	svc := NewStreakService(db)
	svc.SetClock(fixedClock(time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)))

	streak, err := svc.Touch(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Touch failed: %v", err)
	}
	if streak != 5 {
		t.Errorf("expected streak to stay at 5 on a second same-day login, got %d", streak)
	}
}

func TestTouchGapResetsToOne(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "S001")

	db.Model(user).Updates(map[string]interface{}{
		"current_streak":  7,
		"last_study_date": "2026-03-05",
	})

	svc := NewStreakService(db)
	svc.SetClock(fixedClock(time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)))

	streak, err := svc.Touch(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Touch failed: %v", err)
	}
	if streak != 1 {
		t.Errorf("expected streak reset to 1 after a gap, got %d", streak)
	}

	var got model.User
	db.First(&got, user.ID)
	if got.LastStudyDate != "2026-03-10" {
		t.Errorf("expected last_study_date updated to today, got %q", got.LastStudyDate)
	}
}
