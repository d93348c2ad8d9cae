package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"questline/engine/internal/constants"
	"questline/engine/internal/db/repositories"
	"questline/engine/internal/logging"
	"questline/engine/internal/metrics"
	"questline/engine/internal/models"
	"questline/engine/internal/models/dtos"
	gormModels "questline/engine/internal/models/gorm"
)

// SubmissionWorkflow drives the task submission lifecycle: publish task,
// submit evidence, decide, settle XP. It is the only component that couples
// ledger writes to the XP engine.
type SubmissionWorkflow struct {
	tasks    *repositories.TaskRepositoryGORM
	subs     *repositories.SubmissionRepositoryGORM
	profiles *repositories.ProfileRepositoryGORM
	engine   *XPEngine
	metrics  *metrics.Registry
}

// NewSubmissionWorkflow creates a SubmissionWorkflow. metricsReg may be nil.
func NewSubmissionWorkflow(
	tasks *repositories.TaskRepositoryGORM,
	subs *repositories.SubmissionRepositoryGORM,
	profiles *repositories.ProfileRepositoryGORM,
	engine *XPEngine,
	metricsReg *metrics.Registry,
) *SubmissionWorkflow {
	return &SubmissionWorkflow{
		tasks:    tasks,
		subs:     subs,
		profiles: profiles,
		engine:   engine,
		metrics:  metricsReg,
	}
}

// CreateTask publishes a task after validating its bounds.
func (w *SubmissionWorkflow) CreateTask(
	ctx context.Context,
	title, description string,
	xpReward int64,
	createdBy, communityID string,
) (*dtos.TaskView, error) {
	if title == "" || utf8.RuneCountInString(title) > constants.MaxTitleLen {
		return nil, &models.ValidationError{
			Field:  "title",
			Reason: fmt.Sprintf("must be 1-%d characters", constants.MaxTitleLen),
		}
	}
	if description == "" || utf8.RuneCountInString(description) > constants.MaxDescriptionLen {
		return nil, &models.ValidationError{
			Field:  "description",
			Reason: fmt.Sprintf("must be 1-%d characters", constants.MaxDescriptionLen),
		}
	}
	if xpReward < constants.MinTaskReward || xpReward > constants.MaxTaskReward {
		return nil, &models.ValidationError{
			Field:  "xp_reward",
			Reason: fmt.Sprintf("must be between %d and %d", constants.MinTaskReward, constants.MaxTaskReward),
		}
	}

	task := &gormModels.Task{
		Title:       title,
		Description: description,
		XPReward:    xpReward,
		CreatedBy:   createdBy,
		CommunityID: communityID,
		Active:      true,
	}
	if err := w.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	w.metrics.IncTaskCreated()
	logging.Info("task published",
		"task_id", task.ID,
		"community_id", communityID,
		"created_by", createdBy,
		"xp_reward", xpReward,
	)

	return taskToView(task), nil
}

// Submit records a member's claim of completing a task. The task must exist,
// be active, and belong to the member's community; evidence length is
// re-validated here even though the UI bounds it too.
func (w *SubmissionWorkflow) Submit(
	ctx context.Context,
	memberID, communityID string,
	taskID uint,
	evidence string,
	messageRef *string,
) (uint, error) {
	length := utf8.RuneCountInString(evidence)
	if length < constants.MinEvidenceLen || length > constants.MaxEvidenceLen {
		return 0, &models.ValidationError{
			Field:  "evidence",
			Reason: fmt.Sprintf("must be %d-%d characters", constants.MinEvidenceLen, constants.MaxEvidenceLen),
		}
	}

	task, err := w.tasks.GetByID(ctx, taskID)
	if err != nil {
		return 0, err
	}
	if !task.Active || task.CommunityID != communityID {
		return 0, models.ErrTaskNotFound
	}

	exists, err := w.subs.HasForTask(ctx, communityID, memberID, taskID)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, models.ErrDuplicateSubmission
	}

	sub := &gormModels.Submission{
		MemberID:    memberID,
		CommunityID: communityID,
		TaskID:      &taskID,
		Evidence:    evidence,
		MessageRef:  messageRef,
	}
	if err := w.subs.Create(ctx, sub); err != nil {
		return 0, err
	}

	if _, err := w.profiles.GetOrCreate(ctx, memberID, communityID); err != nil {
		return 0, err
	}
	if err := w.profiles.IncrementSubmissionCounters(ctx, memberID, communityID, 1, 0); err != nil {
		return 0, err
	}

	w.metrics.IncSubmissionCreated()
	logging.WithMember(communityID, memberID).Infow("submission created",
		"submission_id", sub.ID,
		"task_id", taskID,
	)

	return sub.ID, nil
}

// Decide resolves a pending submission. On approval the awarded XP defaults
// to the task's reward unless overridden, and settlement runs after the
// decision is persisted. A settlement failure surfaces as
// PartialDecisionError so moderators can reconcile; it is never swallowed.
func (w *SubmissionWorkflow) Decide(
	ctx context.Context,
	submissionID uint,
	approved bool,
	reviewedBy string,
	reason *string,
	overrideXP *int64,
) (*dtos.DecisionResult, error) {
	sub, err := w.subs.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != constants.SubmissionPending {
		return nil, models.ErrInvalidState
	}

	status := constants.SubmissionRejected
	var xpAwarded int64
	if approved {
		status = constants.SubmissionApproved
		xpAwarded = sub.TaskXPReward
		if overrideXP != nil {
			xpAwarded = *overrideXP
		}
	}

	if err := w.subs.SetDecision(ctx, submissionID, status, reviewedBy, reason, xpAwarded); err != nil {
		return nil, err
	}

	var xpResult *dtos.XPChangeResult
	if approved && xpAwarded > 0 {
		grantReason := fmt.Sprintf("Task completion: %s", sub.TaskTitle)
		if reason != nil && *reason != "" {
			grantReason = *reason
		}

		xpResult, err = w.engine.AwardXP(ctx, sub.MemberID, sub.CommunityID, xpAwarded, grantReason, &reviewedBy, &submissionID)
		if err != nil {
			return nil, &models.PartialDecisionError{SubmissionID: submissionID, Err: err}
		}

		if err := w.profiles.IncrementSubmissionCounters(ctx, sub.MemberID, sub.CommunityID, 0, 1); err != nil {
			return nil, &models.PartialDecisionError{SubmissionID: submissionID, Err: err}
		}
	}

	updated, err := w.subs.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	w.metrics.IncSubmissionDecided(status)
	logging.WithMember(sub.CommunityID, sub.MemberID).Infow("submission decided",
		"submission_id", submissionID,
		"status", status,
		"reviewed_by", reviewedBy,
		"xp_awarded", xpAwarded,
	)

	return &dtos.DecisionResult{Submission: updated, XPResult: xpResult}, nil
}

// ListPendingSubmissions returns a community's review queue, oldest first.
func (w *SubmissionWorkflow) ListPendingSubmissions(ctx context.Context, communityID string) ([]dtos.SubmissionView, error) {
	return w.subs.ListPending(ctx, communityID)
}

// ListSubmissionsForMember returns a member's history, newest first.
func (w *SubmissionWorkflow) ListSubmissionsForMember(ctx context.Context, communityID, memberID string) ([]dtos.SubmissionView, error) {
	return w.subs.ListForMember(ctx, communityID, memberID)
}

// ListActiveTasks returns all of a community's open tasks.
func (w *SubmissionWorkflow) ListActiveTasks(ctx context.Context, communityID string) ([]dtos.TaskView, error) {
	tasks, err := w.tasks.ListActive(ctx, communityID)
	if err != nil {
		return nil, err
	}
	return tasksToViews(tasks), nil
}

// ListAvailableTasks returns the open tasks a member can still submit
// against. Any prior submission, including a rejected one, removes the task
// from the member's view.
func (w *SubmissionWorkflow) ListAvailableTasks(ctx context.Context, communityID, memberID string) ([]dtos.TaskView, error) {
	tasks, err := w.tasks.ListAvailableForMember(ctx, communityID, memberID)
	if err != nil {
		return nil, err
	}
	return tasksToViews(tasks), nil
}

// DeactivateTask retires a task from the available views. Historical
// submissions keep referencing it.
func (w *SubmissionWorkflow) DeactivateTask(ctx context.Context, taskID uint) error {
	return w.tasks.Deactivate(ctx, taskID)
}

func taskToView(task *gormModels.Task) *dtos.TaskView {
	return &dtos.TaskView{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		XPReward:    task.XPReward,
		CreatedBy:   task.CreatedBy,
		CommunityID: task.CommunityID,
		Active:      task.Active,
		CreatedAt:   task.CreatedAt,
	}
}

func tasksToViews(tasks []gormModels.Task) []dtos.TaskView {
	views := make([]dtos.TaskView, 0, len(tasks))
	for i := range tasks {
		views = append(views, *taskToView(&tasks[i]))
	}
	return views
}
