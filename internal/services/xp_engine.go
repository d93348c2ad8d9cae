package services

import (
	"context"
	"fmt"

	"questline/engine/internal/db/repositories"
	"questline/engine/internal/levels"
	"questline/engine/internal/logging"
	"questline/engine/internal/metrics"
	"questline/engine/internal/models/dtos"

	"github.com/google/uuid"
)

// RoleGrantNotifier receives role-grant intents emitted on level
// milestones. The presentation layer implements it to perform the actual
// role assignment; the engine never calls the chat platform itself.
type RoleGrantNotifier interface {
	NotifyRoleGrant(ctx context.Context, intent dtos.RoleGrantIntent)
}

// RoleGrantFunc adapts a plain function to RoleGrantNotifier.
type RoleGrantFunc func(ctx context.Context, intent dtos.RoleGrantIntent)

func (f RoleGrantFunc) NotifyRoleGrant(ctx context.Context, intent dtos.RoleGrantIntent) {
	f(ctx, intent)
}

// XPEngine is the single entry point for granting XP and reacting to level
// changes. Level is never set independently of XP.
type XPEngine struct {
	profiles   *repositories.ProfileRepositoryGORM
	stats      *repositories.LeaderboardRepository
	curve      *levels.Curve
	levelRoles map[int]string
	notifier   RoleGrantNotifier
	metrics    *metrics.Registry
}

// NewXPEngine creates an XPEngine. notifier and metricsReg may be nil.
func NewXPEngine(
	profiles *repositories.ProfileRepositoryGORM,
	stats *repositories.LeaderboardRepository,
	curve *levels.Curve,
	levelRoles map[int]string,
	notifier RoleGrantNotifier,
	metricsReg *metrics.Registry,
) *XPEngine {
	return &XPEngine{
		profiles:   profiles,
		stats:      stats,
		curve:      curve,
		levelRoles: levelRoles,
		notifier:   notifier,
		metrics:    metricsReg,
	}
}

// AwardXP applies a signed XP delta and handles level-change side effects.
// The amount is unconstrained here: administrative set/reset operations
// route negative deltas through this path, and the UI layer applies its own
// 1-1000 bound before calling in.
func (e *XPEngine) AwardXP(
	ctx context.Context,
	memberID, communityID string,
	amount int64,
	reason string,
	grantedBy *string,
	submissionID *uint,
) (*dtos.XPChangeResult, error) {
	result, err := e.profiles.ApplyXPDelta(ctx, memberID, communityID, amount, reason, grantedBy, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to apply xp delta: %w", err)
	}

	direction := "credit"
	if amount < 0 {
		direction = "debit"
	}
	e.metrics.IncXPGrant(direction)

	if result.LeveledUp {
		e.metrics.IncLevelUp()
		logging.WithMember(communityID, memberID).Infow("member leveled up",
			"old_level", result.OldLevel,
			"new_level", result.NewLevel,
			"xp", result.NewXP,
		)
		result.RoleGrant = e.handleLevelUp(ctx, memberID, communityID, result.NewLevel)
	}

	return result, nil
}

// handleLevelUp emits a role-grant intent when the new level has a
// configured role mapping. No mapping means no intent, and that is not an
// error.
func (e *XPEngine) handleLevelUp(ctx context.Context, memberID, communityID string, newLevel int) *dtos.RoleGrantIntent {
	roleID, ok := e.levelRoles[newLevel]
	if !ok {
		return nil
	}

	intent := dtos.RoleGrantIntent{
		IntentID:    uuid.NewString(),
		MemberID:    memberID,
		CommunityID: communityID,
		Level:       newLevel,
		RoleID:      roleID,
	}
	e.metrics.IncRoleGrantIntent()
	logging.WithMember(communityID, memberID).Infow("role grant intent emitted",
		"level", newLevel,
		"role_id", roleID,
		"intent_id", intent.IntentID,
	)

	if e.notifier != nil {
		e.notifier.NotifyRoleGrant(ctx, intent)
	}
	return &intent
}

// SetXP moves a profile to an exact XP value by computing and applying the
// required delta, keeping the audit log complete. A no-op when the profile
// is already at the target.
func (e *XPEngine) SetXP(
	ctx context.Context,
	memberID, communityID string,
	target int64,
	reason string,
	grantedBy *string,
) (*dtos.XPChangeResult, error) {
	profile, err := e.profiles.GetOrCreate(ctx, memberID, communityID)
	if err != nil {
		return nil, err
	}

	delta := target - profile.XP
	if delta == 0 {
		return &dtos.XPChangeResult{
			MemberID:    memberID,
			CommunityID: communityID,
			OldXP:       profile.XP,
			NewXP:       profile.XP,
			OldLevel:    profile.Level,
			NewLevel:    profile.Level,
		}, nil
	}

	return e.AwardXP(ctx, memberID, communityID, delta, reason, grantedBy, nil)
}

// GetProfile composes the profile row, its aggregate stats, and level
// progress. Creates the profile lazily on first query.
func (e *XPEngine) GetProfile(ctx context.Context, memberID, communityID string) (*dtos.ProfileView, error) {
	profile, err := e.profiles.GetOrCreate(ctx, memberID, communityID)
	if err != nil {
		return nil, err
	}

	stats, err := e.stats.MemberStats(ctx, communityID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member stats: %w", err)
	}

	return &dtos.ProfileView{
		MemberID:            memberID,
		CommunityID:         communityID,
		XP:                  profile.XP,
		Level:               profile.Level,
		TotalSubmissions:    stats.TotalSubmissions,
		ApprovedSubmissions: stats.ApprovedSubmissions,
		LifetimeXP:          stats.LifetimeXP,
		Progress:            e.curve.ProgressFor(profile.XP, profile.Level),
		CreatedAt:           profile.CreatedAt,
	}, nil
}
