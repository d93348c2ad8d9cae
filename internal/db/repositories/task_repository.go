package repositories

import (
	"context"
	"errors"
	"fmt"

	"questline/engine/internal/models"
	gormModels "questline/engine/internal/models/gorm"

	"gorm.io/gorm"
)

// TaskRepositoryGORM owns the tasks table. Tasks are soft-deleted via the
// active flag; historical submissions keep referencing retired rows.
type TaskRepositoryGORM struct {
	db *gorm.DB
}

// NewTaskRepositoryGORM creates a new GORM-based task repository
func NewTaskRepositoryGORM(db *gorm.DB) *TaskRepositoryGORM {
	return &TaskRepositoryGORM{db: db}
}

// Create inserts a task and assigns its id.
func (r *TaskRepositoryGORM) Create(ctx context.Context, task *gormModels.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// GetByID retrieves a task regardless of its active flag.
func (r *TaskRepositoryGORM) GetByID(ctx context.Context, id uint) (*gormModels.Task, error) {
	var task gormModels.Task

	err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to fetch task: %w", err)
	}

	return &task, nil
}

// ListActive returns a community's active tasks, newest first.
func (r *TaskRepositoryGORM) ListActive(ctx context.Context, communityID string) ([]gormModels.Task, error) {
	var tasks []gormModels.Task

	err := r.db.WithContext(ctx).
		Where("community_id = ? AND active = ?", communityID, true).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active tasks: %w", err)
	}

	return tasks, nil
}

// ListAvailableForMember returns active tasks the member has not yet
// submitted against, in any status. A rejected submission still removes the
// task from the member's view.
func (r *TaskRepositoryGORM) ListAvailableForMember(ctx context.Context, communityID, memberID string) ([]gormModels.Task, error) {
	var tasks []gormModels.Task

	submitted := r.db.Model(&gormModels.Submission{}).
		Select("task_id").
		Where("community_id = ? AND member_id = ? AND task_id IS NOT NULL", communityID, memberID)

	err := r.db.WithContext(ctx).
		Where("community_id = ? AND active = ?", communityID, true).
		Where("id NOT IN (?)", submitted).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list available tasks: %w", err)
	}

	return tasks, nil
}

// Deactivate retires a task. Returns models.ErrTaskNotFound when no row
// matched.
func (r *TaskRepositoryGORM) Deactivate(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&gormModels.Task{}).
		Where("id = ? AND active = ?", id, true).
		Update("active", false)
	if res.Error != nil {
		return fmt.Errorf("failed to deactivate task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrTaskNotFound
	}
	return nil
}
