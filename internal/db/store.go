package db

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"questline/engine/internal/config"
	gormModels "questline/engine/internal/models/gorm"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open connects the write-side GORM store. Postgres is used when configured,
// otherwise the local SQLite file. No package-level handle is kept; callers
// own the returned instance.
func Open(cfg *config.Config) (*gorm.DB, error) {
	if cfg.Postgres.Enabled() {
		return openPostgres(cfg.Postgres.DSN())
	}
	return openSQLite(cfg.SQLitePath)
}

func openPostgres(dsn string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			return db, nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return nil, fmt.Errorf("failed to connect to postgres: %w", err)
}

func openSQLite(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the four engine tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&gormModels.Profile{},
		&gormModels.Task{},
		&gormModels.Submission{},
		&gormModels.XPLog{},
	)
}
