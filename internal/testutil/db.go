// Package testutil provides databases, fixtures and containers for tests and local development.
package testutil

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/localnerve/equirecords/internal/database"
	"github.com/localnerve/equirecords/internal/models"
)

// NewTestDB creates a migrated in-memory SQLite database.
// A single connection keeps every query on the same in-memory database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying SQL DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// Date returns midnight UTC of the given day
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CreateHorse inserts a horse with sensible defaults, adjusted by mutate
func CreateHorse(t *testing.T, db *gorm.DB, name string, mutate ...func(*models.Horse)) *models.Horse {
	t.Helper()

	h := &models.Horse{
		Name:       name,
		Matricule:  "M-" + name,
		Race:       "Barbe",
		BirthDate:  Date(2015, time.April, 1),
		Sex:        models.SexMale,
		Robe:       "Bai",
		Discipline: "CSO",
		Etat:       models.EtatSain,
	}
	for _, m := range mutate {
		m(h)
	}
	if err := db.Create(h).Error; err != nil {
		t.Fatalf("Failed to create horse %s: %v", name, err)
	}
	return h
}

// CreateTest inserts a test owned by horse, copying its flags
func CreateTest(t *testing.T, db *gorm.DB, horse *models.Horse, testType string, date time.Time, mutate ...func(*models.Test)) *models.Test {
	t.Helper()

	rec := &models.Test{
		HorseRef:  horse.ID,
		Date:      date,
		Type:      testType,
		IsRadie:   horse.IsRadie,
		IsMutated: horse.IsMutated,
	}
	for _, m := range mutate {
		m(rec)
	}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("Failed to create test: %v", err)
	}
	return rec
}

// CreatePerformance inserts a performance owned by horse, copying its flags
func CreatePerformance(t *testing.T, db *gorm.DB, horse *models.Horse, competitionType string, date time.Time, mutate ...func(*models.Performance)) *models.Performance {
	t.Helper()

	rec := &models.Performance{
		HorseRef:        horse.ID,
		Date:            date,
		CompetitionType: competitionType,
		IsRadie:         horse.IsRadie,
		IsMutated:       horse.IsMutated,
	}
	for _, m := range mutate {
		m(rec)
	}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("Failed to create performance: %v", err)
	}
	return rec
}

// CreateProphylaxie inserts a prophylaxie owned by horse with normalized details
func CreateProphylaxie(t *testing.T, db *gorm.DB, horse *models.Horse, prophylaxieType string, date time.Time, details string, mutate ...func(*models.Prophylaxie)) *models.Prophylaxie {
	t.Helper()

	normalized, err := models.NormalizeProphylaxieDetails(prophylaxieType, []byte(details))
	if err != nil {
		t.Fatalf("Failed to normalize details: %v", err)
	}
	rec := &models.Prophylaxie{
		HorseRef:  horse.ID,
		Date:      date,
		Type:      prophylaxieType,
		Details:   normalized,
		IsRadie:   horse.IsRadie,
		IsMutated: horse.IsMutated,
	}
	for _, m := range mutate {
		m(rec)
	}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("Failed to create prophylaxie: %v", err)
	}
	return rec
}
