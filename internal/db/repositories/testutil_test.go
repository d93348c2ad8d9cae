package repositories

import (
	"fmt"
	"testing"

	"questline/engine/internal/levels"
	gormModels "questline/engine/internal/models/gorm"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Setup test database
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql db: %v", err)
	}
	// A single connection keeps the shared in-memory database alive and
	// serializes writers.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&gormModels.Profile{},
		&gormModels.Task{},
		&gormModels.Submission{},
		&gormModels.XPLog{},
	); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return db
}

func newProfileRepo(t *testing.T, db *gorm.DB) *ProfileRepositoryGORM {
	t.Helper()
	return NewProfileRepositoryGORM(db, levels.Default(), false)
}
