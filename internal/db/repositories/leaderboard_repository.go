package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"questline/engine/internal/constants"
	"questline/engine/internal/models"
	"questline/engine/internal/models/entities"

	"github.com/jmoiron/sqlx"
)

// LeaderboardRepository serves the read-side ranking and stats queries over
// sqlx. Statements live in constants and are rebound to the active driver.
type LeaderboardRepository struct {
	db *sqlx.DB
}

func NewLeaderboardRepository(db *sqlx.DB) *LeaderboardRepository {
	return &LeaderboardRepository{db}
}

// Top returns a community's highest-XP members. Ties keep storage order;
// the ordering between equal scores is unspecified.
func (r *LeaderboardRepository) Top(ctx context.Context, communityID string, limit int) ([]entities.LeaderboardRow, error) {
	rows := []entities.LeaderboardRow{}

	err := r.db.SelectContext(ctx, &rows,
		r.db.Rebind(constants.LeaderboardByCommunity), communityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}

	return rows, nil
}

// RankForMember returns the member's 1-based rank within the community,
// computed as the count of strictly higher scores plus one.
func (r *LeaderboardRepository) RankForMember(ctx context.Context, communityID, memberID string) (int, error) {
	var xp int64
	err := r.db.GetContext(ctx, &xp,
		r.db.Rebind(constants.MemberXP), communityID, memberID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, models.ErrProfileNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to fetch member xp: %w", err)
	}

	var above int
	err = r.db.GetContext(ctx, &above,
		r.db.Rebind(constants.MembersAboveXP), communityID, xp)
	if err != nil {
		return 0, fmt.Errorf("failed to compute rank: %w", err)
	}

	return above + 1, nil
}

// MemberStats aggregates a member's submission counts and lifetime earned
// XP from the audit log.
func (r *LeaderboardRepository) MemberStats(ctx context.Context, communityID, memberID string) (*entities.MemberStats, error) {
	stats := &entities.MemberStats{}

	err := r.db.GetContext(ctx, &stats.TotalSubmissions,
		r.db.Rebind(constants.MemberSubmissionCount), communityID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}

	err = r.db.GetContext(ctx, &stats.ApprovedSubmissions,
		r.db.Rebind(constants.MemberApprovedCount), communityID, memberID, constants.SubmissionApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to count approved submissions: %w", err)
	}

	err = r.db.GetContext(ctx, &stats.LifetimeXP,
		r.db.Rebind(constants.MemberLifetimeXP), communityID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum lifetime xp: %w", err)
	}

	return stats, nil
}
