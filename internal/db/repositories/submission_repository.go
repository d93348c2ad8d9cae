package repositories

import (
	"context"
	"errors"
	"fmt"

	"questline/engine/internal/constants"
	"questline/engine/internal/models"
	"questline/engine/internal/models/dtos"
	gormModels "questline/engine/internal/models/gorm"

	"gorm.io/gorm"
)

// SubmissionRepositoryGORM owns the submissions table.
type SubmissionRepositoryGORM struct {
	db *gorm.DB
}

// NewSubmissionRepositoryGORM creates a new GORM-based submission repository
func NewSubmissionRepositoryGORM(db *gorm.DB) *SubmissionRepositoryGORM {
	return &SubmissionRepositoryGORM{db: db}
}

// Create inserts a submission in PENDING state and assigns its id.
func (r *SubmissionRepositoryGORM) Create(ctx context.Context, sub *gormModels.Submission) error {
	sub.Status = constants.SubmissionPending
	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

// GetByID retrieves a submission joined with its task.
func (r *SubmissionRepositoryGORM) GetByID(ctx context.Context, id uint) (*dtos.SubmissionView, error) {
	var sub gormModels.Submission

	err := r.db.WithContext(ctx).Preload("Task").Where("id = ?", id).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to fetch submission: %w", err)
	}

	view := toSubmissionView(&sub)
	return &view, nil
}

// HasForTask reports whether the member already submitted against the task,
// in any status.
func (r *SubmissionRepositoryGORM) HasForTask(ctx context.Context, communityID, memberID string, taskID uint) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).Model(&gormModels.Submission{}).
		Where("community_id = ? AND member_id = ? AND task_id = ?", communityID, memberID, taskID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count submissions: %w", err)
	}

	return count > 0, nil
}

// ListPending returns a community's undecided submissions, oldest first, so
// moderators review in arrival order.
func (r *SubmissionRepositoryGORM) ListPending(ctx context.Context, communityID string) ([]dtos.SubmissionView, error) {
	var subs []gormModels.Submission

	err := r.db.WithContext(ctx).Preload("Task").
		Where("community_id = ? AND status = ?", communityID, constants.SubmissionPending).
		Order("created_at ASC").
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending submissions: %w", err)
	}

	return toSubmissionViews(subs), nil
}

// ListForMember returns a member's submission history, newest first.
func (r *SubmissionRepositoryGORM) ListForMember(ctx context.Context, communityID, memberID string) ([]dtos.SubmissionView, error) {
	var subs []gormModels.Submission

	err := r.db.WithContext(ctx).Preload("Task").
		Where("community_id = ? AND member_id = ?", communityID, memberID).
		Order("created_at DESC").
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list member submissions: %w", err)
	}

	return toSubmissionViews(subs), nil
}

// SetDecision records a moderator decision. The update is guarded on the
// PENDING status so two concurrent reviewers cannot both win; the loser gets
// models.ErrInvalidState.
func (r *SubmissionRepositoryGORM) SetDecision(ctx context.Context, id uint, status, reviewedBy string, reason *string, xpAwarded int64) error {
	res := r.db.WithContext(ctx).Model(&gormModels.Submission{}).
		Where("id = ? AND status = ?", id, constants.SubmissionPending).
		Updates(map[string]interface{}{
			"status":        status,
			"reviewed_by":   reviewedBy,
			"review_reason": reason,
			"xp_awarded":    xpAwarded,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to record decision: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&gormModels.Submission{}).
			Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check submission: %w", err)
		}
		if count == 0 {
			return models.ErrSubmissionNotFound
		}
		return models.ErrInvalidState
	}

	return nil
}

func toSubmissionView(sub *gormModels.Submission) dtos.SubmissionView {
	view := dtos.SubmissionView{
		ID:           sub.ID,
		MemberID:     sub.MemberID,
		CommunityID:  sub.CommunityID,
		TaskID:       sub.TaskID,
		Evidence:     sub.Evidence,
		Status:       sub.Status,
		ReviewedBy:   sub.ReviewedBy,
		ReviewReason: sub.ReviewReason,
		XPAwarded:    sub.XPAwarded,
		MessageRef:   sub.MessageRef,
		CreatedAt:    sub.CreatedAt,
		UpdatedAt:    sub.UpdatedAt,
	}
	if sub.Task != nil {
		view.TaskTitle = sub.Task.Title
		view.TaskDescription = sub.Task.Description
		view.TaskXPReward = sub.Task.XPReward
	}
	return view
}

func toSubmissionViews(subs []gormModels.Submission) []dtos.SubmissionView {
	views := make([]dtos.SubmissionView, 0, len(subs))
	for i := range subs {
		views = append(views, toSubmissionView(&subs[i]))
	}
	return views
}
