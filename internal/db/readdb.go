package db

import (
	"fmt"
	"time"

	"questline/engine/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// OpenRead connects the sqlx handle used by the read-side queries
// (leaderboard, rank, member stats). It points at the same database as the
// GORM store.
func OpenRead(cfg *config.Config) (*sqlx.DB, error) {
	if cfg.Postgres.Enabled() {
		var rdb *sqlx.DB
		var err error
		for i := 0; i < 10; i++ {
			rdb, err = sqlx.Connect("postgres", cfg.Postgres.DSN())
			if err == nil {
				return rdb, nil
			}
			time.Sleep(500 * time.Millisecond)
		}
		return nil, fmt.Errorf("failed to connect read db: %w", err)
	}

	rdb, err := sqlx.Connect("sqlite3", cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite read db: %w", err)
	}
	return rdb, nil
}
