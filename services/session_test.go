package services

import (
	"context"
	"testing"
	"time"

	"github.com/studyhall-app/studyhall-api/model"
)

func TestCreateSessionValidation(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "S001")
	svc := NewSessionService(db)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateSessionInput
		want  error
	}{
		{"missing subject", CreateSessionInput{Period: 1}, ErrInvalidSubject},
		{"unknown subject", CreateSessionInput{SubjectID: 999, Period: 1}, ErrInvalidSubject},
		{"period too low", CreateSessionInput{SubjectID: 2, Period: 0}, ErrInvalidPeriod},
		{"period too high", CreateSessionInput{SubjectID: 2, Period: 13}, ErrInvalidPeriod},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, user.ID, tc.input)
			if err != tc.want {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSessionDefaultsDateToToday(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "S001")
	svc := NewSessionService(db)

	session, err := svc.Create(context.Background(), user.ID, CreateSessionInput{
		SubjectID: 2,
		Period:    3,
		UnitName:  "Linear equations",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	today := time.Now().Format(model.DateFormat)
	if session.StudyDate != today {
		t.Errorf("expected study_date %s, got %s", today, session.StudyDate)
	}
	if session.Subject.Name != "Mathematics" {
		t.Errorf("expected preloaded subject Mathematics, got %q", session.Subject.Name)
	}
}

func TestGetOrCreateCurrent(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "S001")
	svc := NewSessionService(db)
	ctx := context.Background()

	input := CreateSessionInput{SubjectID: 2, StudyDate: "2026-03-10", Period: 3, UnitName: "Fractions"}

	first, created, err := svc.GetOrCreateCurrent(ctx, user.ID, input)
	if err != nil {
		t.Fatalf("GetOrCreateCurrent failed: %v", err)
	}
	if !created {
		t.Fatal("expected first call to create a session")
	}

	// Same natural key with a different unit name: must return the existing
	// row untouched.
	input.UnitName = "Decimals"
	second, created, err := svc.GetOrCreateCurrent(ctx, user.ID, input)
	if err != nil {
		t.Fatalf("GetOrCreateCurrent failed: %v", err)
	}
	if created {
		t.Error("expected second call to find the existing session")
	}
	if second.ID != first.ID {
		t.Errorf("expected session %d, got %d", first.ID, second.ID)
	}
	if second.UnitName != "Fractions" {
		t.Errorf("expected unit name to be ignored on a hit, got %q", second.UnitName)
	}

	// A different period on the same day is a different lesson
	input.Period = 4
	third, created, err := svc.GetOrCreateCurrent(ctx, user.ID, input)
	if err != nil {
		t.Fatalf("GetOrCreateCurrent failed: %v", err)
	}
	if !created || third.ID == first.ID {
		t.Error("expected a new session for a different period")
	}
}

func TestGetOrCreateCurrentDefaultsPeriod(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "S001")
	svc := NewSessionService(db)

	session, created, err := svc.GetOrCreateCurrent(context.Background(), user.ID, CreateSessionInput{
		SubjectID: 1,
		StudyDate: "2026-03-10",
	})
	if err != nil {
		t.Fatalf("GetOrCreateCurrent failed: %v", err)
	}
	if !created {
		t.Fatal("expected a new session")
	}
	if session.Period != model.MinPeriod {
		t.Errorf("expected default period %d, got %d", model.MinPeriod, session.Period)
	}
}

func TestSessionOwnership(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "S001")
	other := createTestUser(t, db, "S002")
	session := createTestSession(t, db, owner.ID, 2, "2026-03-10", 3)
	svc := NewSessionService(db)
	ctx := context.Background()

	// Lookups hide foreign sessions entirely
	if _, err := svc.Get(ctx, other.ID, session.ID); err != ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound for a foreign Get, got %v", err)
	}

	// Write authorization distinguishes foreign from absent
	if _, err := svc.Authorize(ctx, other.ID, session.ID); err != ErrSessionForbidden {
		t.Errorf("expected ErrSessionForbidden for a foreign Authorize, got %v", err)
	}
	if _, err := svc.Authorize(ctx, owner.ID, 9999); err != ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound for a missing session, got %v", err)
	}

	if _, err := svc.Get(ctx, owner.ID, session.ID); err != nil {
		t.Errorf("expected owner Get to succeed, got %v", err)
	}
}

func TestUpdateSessionPartial(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "S001")
	session := createTestSession(t, db, user.ID, 2, "2026-03-10", 3)
	svc := NewSessionService(db)
	ctx := context.Background()

	period := 5
	updated, err := svc.Update(ctx, user.ID, session.ID, SessionUpdate{Period: &period})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Period != 5 {
		t.Errorf("expected period 5, got %d", updated.Period)
	}
	if updated.UnitName != "Fractions" {
		t.Errorf("expected untouched unit name, got %q", updated.UnitName)
	}

	if _, err := svc.Update(ctx, user.ID, session.ID, SessionUpdate{}); err != ErrEmptyUpdate {
		t.Errorf("expected ErrEmptyUpdate, got %v", err)
	}

	badPeriod := 13
	if _, err := svc.Update(ctx, user.ID, session.ID, SessionUpdate{Period: &badPeriod}); err != ErrInvalidPeriod {
		t.Errorf("expected ErrInvalidPeriod, got %v", err)
	}

	badSubject := uint(999)
	if _, err := svc.Update(ctx, user.ID, session.ID, SessionUpdate{SubjectID: &badSubject}); err != ErrInvalidSubject {
		t.Errorf("expected ErrInvalidSubject, got %v", err)
	}
}

func TestListHistory(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "S001")
	other := createTestUser(t, db, "S002")
	svc := NewSessionService(db)
	ctx := context.Background()

	older := createTestSession(t, db, user.ID, 1, "2026-03-09", 2)
	newer := createTestSession(t, db, user.ID, 2, "2026-03-10", 1)
	createTestSession(t, db, other.ID, 3, "2026-03-10", 1)

	for i := 0; i < 3; i++ {
		db.Create(&model.ChatMessage{SessionID: newer.ID, Sender: model.SenderUser, Content: "q"})
	}
	db.Create(&model.Reflection{SessionID: older.ID, UnderstoodText: "fractions"})

	entries, total, err := svc.ListHistory(ctx, user.ID, 20, 0)
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if total != 2 {
		t.Errorf("expected total 2, got %d", total)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	if entries[0].SessionID != newer.ID {
		t.Errorf("expected newest lesson first, got session %d", entries[0].SessionID)
	}
	if entries[0].MessageCount != 3 {
		t.Errorf("expected message_count 3, got %d", entries[0].MessageCount)
	}
	if entries[0].HasReflection {
		t.Error("expected no reflection on the newer session")
	}
	if entries[0].SubjectName != "Mathematics" {
		t.Errorf("expected subject name Mathematics, got %q", entries[0].SubjectName)
	}

	if entries[1].SessionID != older.ID {
		t.Errorf("expected older session second, got %d", entries[1].SessionID)
	}
	if !entries[1].HasReflection {
		t.Error("expected has_reflection on the older session")
	}
	if entries[1].MessageCount != 0 {
		t.Errorf("expected message_count 0, got %d", entries[1].MessageCount)
	}
}
