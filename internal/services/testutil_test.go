package services

import (
	"fmt"
	"testing"

	"questline/engine/internal/db/repositories"
	"questline/engine/internal/levels"
	gormModels "questline/engine/internal/models/gorm"

	"github.com/jmoiron/sqlx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	gdb      *gorm.DB
	rdb      *sqlx.DB
	profiles *repositories.ProfileRepositoryGORM
	tasks    *repositories.TaskRepositoryGORM
	subs     *repositories.SubmissionRepositoryGORM
	board    *repositories.LeaderboardRepository
	curve    *levels.Curve
}

// newTestEnv wires the full repository stack over one shared in-memory
// database so both the gorm write side and the sqlx read side see the same
// rows.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("Failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(
		&gormModels.Profile{},
		&gormModels.Task{},
		&gormModels.Submission{},
		&gormModels.XPLog{},
	); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	rdb, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		t.Fatalf("Failed to open read database: %v", err)
	}
	rdb.SetMaxOpenConns(1)
	t.Cleanup(func() { rdb.Close() })

	curve := levels.Default()
	return &testEnv{
		gdb:      gdb,
		rdb:      rdb,
		profiles: repositories.NewProfileRepositoryGORM(gdb, curve, false),
		tasks:    repositories.NewTaskRepositoryGORM(gdb),
		subs:     repositories.NewSubmissionRepositoryGORM(gdb),
		board:    repositories.NewLeaderboardRepository(rdb),
		curve:    curve,
	}
}

func (env *testEnv) newEngine(levelRoles map[int]string, notifier RoleGrantNotifier) *XPEngine {
	return NewXPEngine(env.profiles, env.board, env.curve, levelRoles, notifier, nil)
}

func (env *testEnv) newWorkflow(engine *XPEngine) *SubmissionWorkflow {
	return NewSubmissionWorkflow(env.tasks, env.subs, env.profiles, engine, nil)
}
