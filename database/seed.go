package database

import (
	"fmt"
	"log"

	"github.com/studyhall-app/studyhall-api/model"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("Starting database seeding...")

	if err := s.SeedSubjects(); err != nil {
		return fmt.Errorf("failed to seed subjects: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedSubjects creates the static subject reference rows. Idempotent: existing
// rows are left untouched.
func (s *Seeder) SeedSubjects() error {
	subjects := []model.Subject{
		{ID: 1, Name: "Japanese"},
		{ID: 2, Name: "Mathematics"},
		{ID: 3, Name: "English"},
		{ID: 4, Name: "Science"},
		{ID: 5, Name: "Social Studies"},
		{ID: 6, Name: "Music"},
		{ID: 7, Name: "Art"},
		{ID: 8, Name: "Physical Education"},
		{ID: 9, Name: "Technology and Home Economics"},
	}

	for _, subject := range subjects {
		var count int64
		if err := s.db.Model(&model.Subject{}).Where("subject_id = ?", subject.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := s.db.Create(&subject).Error; err != nil {
			return err
		}
	}

	return nil
}
