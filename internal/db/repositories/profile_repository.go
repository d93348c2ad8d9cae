package repositories

import (
	"context"
	"errors"
	"fmt"

	"questline/engine/internal/levels"
	"questline/engine/internal/models"
	"questline/engine/internal/models/dtos"
	gormModels "questline/engine/internal/models/gorm"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepositoryGORM owns the profiles table and the xp_logs audit trail.
// All XP mutations go through ApplyXPDelta so the log stays complete.
type ProfileRepositoryGORM struct {
	db            *gorm.DB
	curve         *levels.Curve
	clampNegative bool
}

// NewProfileRepositoryGORM creates a new GORM-based profile repository
func NewProfileRepositoryGORM(db *gorm.DB, curve *levels.Curve, clampNegative bool) *ProfileRepositoryGORM {
	return &ProfileRepositoryGORM{db: db, curve: curve, clampNegative: clampNegative}
}

// Get retrieves a profile row, returning models.ErrProfileNotFound when the
// (community, member) pair has no record yet.
func (r *ProfileRepositoryGORM) Get(ctx context.Context, memberID, communityID string) (*gormModels.Profile, error) {
	var profile gormModels.Profile

	err := r.db.WithContext(ctx).
		Where("member_id = ? AND community_id = ?", memberID, communityID).
		First(&profile).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	return &profile, nil
}

// GetOrCreate returns the existing profile or lazily creates one at xp=0,
// level=1. Creation races resolve through the unique index plus a re-fetch.
func (r *ProfileRepositoryGORM) GetOrCreate(ctx context.Context, memberID, communityID string) (*gormModels.Profile, error) {
	profile, err := r.Get(ctx, memberID, communityID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, models.ErrProfileNotFound) {
		return nil, err
	}

	fresh := gormModels.Profile{
		MemberID:    memberID,
		CommunityID: communityID,
		XP:          0,
		Level:       1,
	}
	if createErr := r.db.WithContext(ctx).Create(&fresh).Error; createErr != nil {
		// Lost the insert race; the row exists now.
		return r.Get(ctx, memberID, communityID)
	}
	return &fresh, nil
}

// ApplyXPDelta adds a signed delta to a profile inside a transaction,
// recomputes the level, and appends the audit log entry. The profile row is
// locked for the duration on engines that support it, so two concurrent
// grants to the same member both land.
func (r *ProfileRepositoryGORM) ApplyXPDelta(
	ctx context.Context,
	memberID, communityID string,
	delta int64,
	reason string,
	grantedBy *string,
	submissionID *uint,
) (*dtos.XPChangeResult, error) {
	var result *dtos.XPChangeResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx
		if tx.Dialector.Name() == "postgres" {
			query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var profile gormModels.Profile
		err := query.
			Where("member_id = ? AND community_id = ?", memberID, communityID).
			First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			profile = gormModels.Profile{
				MemberID:    memberID,
				CommunityID: communityID,
				XP:          0,
				Level:       1,
			}
			if err := tx.Create(&profile).Error; err != nil {
				return fmt.Errorf("failed to create profile: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("failed to fetch profile: %w", err)
		}

		newXP := profile.XP + delta
		if r.clampNegative && newXP < 0 {
			newXP = 0
		}
		newLevel := r.curve.LevelForXP(newXP)

		// Log the delta actually applied so the audit trail sums to the
		// profile's XP even when clamping truncates the request.
		applied := newXP - profile.XP

		if err := tx.Model(&gormModels.Profile{}).
			Where("id = ?", profile.ID).
			Updates(map[string]interface{}{"xp": newXP, "level": newLevel}).Error; err != nil {
			return fmt.Errorf("failed to update profile xp: %w", err)
		}

		entry := gormModels.XPLog{
			MemberID:     memberID,
			CommunityID:  communityID,
			Delta:        applied,
			Reason:       reason,
			GrantedBy:    grantedBy,
			SubmissionID: submissionID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to append xp log: %w", err)
		}

		result = &dtos.XPChangeResult{
			MemberID:    memberID,
			CommunityID: communityID,
			OldXP:       profile.XP,
			NewXP:       newXP,
			OldLevel:    profile.Level,
			NewLevel:    newLevel,
			LeveledUp:   newLevel > profile.Level,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// IncrementSubmissionCounters bumps the denormalized submission counters on
// a profile.
func (r *ProfileRepositoryGORM) IncrementSubmissionCounters(ctx context.Context, memberID, communityID string, totalDelta, approvedDelta int) error {
	updates := map[string]interface{}{}
	if totalDelta != 0 {
		updates["total_submissions"] = gorm.Expr("total_submissions + ?", totalDelta)
	}
	if approvedDelta != 0 {
		updates["approved_submissions"] = gorm.Expr("approved_submissions + ?", approvedDelta)
	}
	if len(updates) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).Model(&gormModels.Profile{}).
		Where("member_id = ? AND community_id = ?", memberID, communityID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to update submission counters: %w", err)
	}
	return nil
}
