package services

import (
	"questline/engine/internal/common"
	"questline/engine/internal/config"
	"questline/engine/internal/db/repositories"
	"questline/engine/internal/levels"
	"questline/engine/internal/metrics"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

type Repositories struct {
	Profiles    *repositories.ProfileRepositoryGORM
	Tasks       *repositories.TaskRepositoryGORM
	Submissions *repositories.SubmissionRepositoryGORM
	Leaderboard *repositories.LeaderboardRepository
}

type Services struct {
	Engine      *XPEngine
	Workflow    *SubmissionWorkflow
	Leaderboard *LeaderboardService
}

// Dependencies wires the full engine from its stores. It is the composition
// root used by cmd/engined and by embedding applications.
type Dependencies struct {
	Curve    *levels.Curve
	Repo     *Repositories
	Services *Services
}

// InitDependencies builds the repository and service graph. notifier, cache
// and metricsReg may be nil.
func InitDependencies(
	cfg *config.Config,
	gdb *gorm.DB,
	rdb *sqlx.DB,
	cache common.CacheInterface,
	notifier RoleGrantNotifier,
	metricsReg *metrics.Registry,
) (*Dependencies, error) {
	curve := levels.Default()
	if len(cfg.LevelThresholds) > 0 {
		var err error
		curve, err = levels.NewCurve(cfg.LevelThresholds)
		if err != nil {
			return nil, err
		}
	}

	repos := &Repositories{
		Profiles:    repositories.NewProfileRepositoryGORM(gdb, curve, cfg.ClampNegativeXP),
		Tasks:       repositories.NewTaskRepositoryGORM(gdb),
		Submissions: repositories.NewSubmissionRepositoryGORM(gdb),
		Leaderboard: repositories.NewLeaderboardRepository(rdb),
	}

	engine := NewXPEngine(repos.Profiles, repos.Leaderboard, curve, cfg.LevelRoles, notifier, metricsReg)

	svcs := &Services{
		Engine:      engine,
		Workflow:    NewSubmissionWorkflow(repos.Tasks, repos.Submissions, repos.Profiles, engine, metricsReg),
		Leaderboard: NewLeaderboardService(repos.Leaderboard, cache, metricsReg),
	}

	return &Dependencies{
		Curve:    curve,
		Repo:     repos,
		Services: svcs,
	}, nil
}
