package services

import (
	"strings"
	"testing"

	"github.com/studyhall-app/studyhall-api/database"
	"github.com/studyhall-app/studyhall-api/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an isolated in-memory database with the full schema and
// the seeded subject list.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	if err := database.NewSeeder(db).SeedAll(); err != nil {
		t.Fatalf("failed to seed test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, studentCode string) *model.User {
	t.Helper()

	user := &model.User{
		StudentCode:  studentCode,
		DisplayName:  "Test Student",
		PasswordHash: "not-a-real-hash",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestSession(t *testing.T, db *gorm.DB, userID, subjectID uint, studyDate string, period int) *model.StudySession {
	t.Helper()

	session := &model.StudySession{
		UserID:    userID,
		SubjectID: subjectID,
		StudyDate: studyDate,
		Period:    period,
		UnitName:  "Fractions",
	}
	if err := db.Create(session).Error; err != nil {
		t.Fatalf("failed to create test session: %v", err)
	}
	return session
}
