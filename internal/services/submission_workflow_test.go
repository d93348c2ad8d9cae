package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"questline/engine/internal/constants"
	"questline/engine/internal/models"
	gormModels "questline/engine/internal/models/gorm"
)

func publishTask(t *testing.T, w *SubmissionWorkflow, community string) uint {
	t.Helper()
	task, err := w.CreateTask(context.Background(), "Design a logo", "Create a new server logo", 50, "mod-1", community)
	if err != nil {
		t.Fatalf("failed to publish task: %v", err)
	}
	return task.ID
}

func TestCreateTask_Validation(t *testing.T) {
	env := newTestEnv(t)
	w := env.newWorkflow(env.newEngine(nil, nil))
	ctx := context.Background()

	cases := []struct {
		name        string
		title       string
		description string
		reward      int64
		field       string
	}{
		{"empty title", "", "desc here", 50, "title"},
		{"title too long", strings.Repeat("x", 101), "desc here", 50, "title"},
		{"empty description", "Title", "", 50, "description"},
		{"reward too low", "Title", "desc here", 0, "xp_reward"},
		{"reward too high", "Title", "desc here", 1001, "xp_reward"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := w.CreateTask(ctx, tc.title, tc.description, tc.reward, "mod-1", "community-1")
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tc.field {
				t.Errorf("field = %q, want %q", verr.Field, tc.field)
			}
		})
	}
}

func TestApprovalFlow_AwardsTaskReward(t *testing.T) {
	env := newTestEnv(t)
	w := env.newWorkflow(env.newEngine(nil, nil))
	ctx := context.Background()

	taskID := publishTask(t, w, "community-1")

	subID, err := w.Submit(ctx, "member-1", "community-1", taskID, "finished, see attached link", nil)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	result, err := w.Decide(ctx, subID, true, "mod-1", nil, nil)
	if err != nil {
		t.Fatalf("decide failed: %v", err)
	}

	if result.Submission.Status != constants.SubmissionApproved {
		t.Errorf("status = %q, want approved", result.Submission.Status)
	}
	if result.Submission.XPAwarded != 50 {
		t.Errorf("xp_awarded = %d, want the task reward of 50", result.Submission.XPAwarded)
	}
	if result.XPResult == nil || result.XPResult.NewXP != 50 {
		t.Fatalf("xp result = %+v, want a 0 -> 50 change", result.XPResult)
	}

	profile, err := env.profiles.Get(ctx, "member-1", "community-1")
	if err != nil {
		t.Fatalf("failed to fetch profile: %v", err)
	}
	if profile.XP != 50 {
		t.Errorf("profile xp = %d, want 50", profile.XP)
	}
	if profile.TotalSubmissions != 1 || profile.ApprovedSubmissions != 1 {
		t.Errorf("counters = %d/%d, want 1/1", profile.TotalSubmissions, profile.ApprovedSubmissions)
	}

	var entry gormModels.XPLog
	if err := env.gdb.Where("submission_id = ?", subID).First(&entry).Error; err != nil {
		t.Fatalf("no audit entry for the settlement: %v", err)
	}
	if entry.Delta != 50 || entry.Reason != "Task completion: Design a logo" {
		t.Errorf("audit entry = delta %d reason %q", entry.Delta, entry.Reason)
	}
}

func TestRejection_AwardsNothing(t *testing.T) {
	env := newTestEnv(t)
	w := env.newWorkflow(env.newEngine(nil, nil))
	ctx := context.Background()

	taskID := publishTask(t, w, "community-1")
	subID, err := w.Submit(ctx, "member-1", "community-1", taskID, "half finished, ran out of time", nil)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	reason := "does not meet the brief"
	result, err := w.Decide(ctx, subID, false, "mod-1", &reason, nil)
	if err != nil {
		t.Fatalf("decide failed: %v", err)
	}

	if result.Submission.Status != constants.SubmissionRejected {
		t.Errorf("status = %q, want rejected", result.Submission.Status)
	}
	if result.XPResult != nil {
		t.Errorf("rejection must not settle XP, got %+v", result.XPResult)
	}
	if result.Submission.ReviewReason == nil || *result.Submission.ReviewReason != reason {
		t.Errorf("review reason = %v", result.Submission.ReviewReason)
	}

	profile, err := env.profiles.Get(ctx, "member-1", "community-1")
	if err != nil {
		t.Fatalf("failed to fetch profile: %v", err)
	}
	if profile.XP != 0 || profile.ApprovedSubmissions != 0 {
		t.Errorf("profile = xp %d approved %d, want both 0", profile.XP, profile.ApprovedSubmissions)
	}

	var count int64
	env.gdb.Model(&gormModels.XPLog{}).Count(&count)
	if count != 0 {
		t.Errorf("audit log has %d entries, want none", count)
	}
}

func TestDecide_OverrideXP(t *testing.T) {
	env := newTestEnv(t)
	w := env.newWorkflow(env.newEngine(nil, nil))
	ctx := context.Background()

	taskID := publishTask(t, w, "community-1")
	subID, err := w.Submit(ctx, "member-1", "community-1", taskID, "went above and beyond here", nil)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	override := int64(75)
	result, err := w.Decide(ctx, subID, true, "mod-1", nil, &override)
	if err != nil {
		t.Fatalf("decide failed: %v", err)
	}
	if result.Submission.XPAwarded != 75 {
		t.Errorf("xp_awarded = %d, want the override of 75", result.Submission.XPAwarded)
	}
	if result.XPResult.NewXP != 75 {
		t.Errorf("settled xp = %d, want 75", result.XPResult.NewXP)
	}
}

func TestDecide_AlreadyDecided(t *testing.T) {
	env := newTestEnv(t)
	w := env.newWorkflow(env.newEngine(nil, nil))
	ctx := context.Background()

	taskID := publishTask(t, w, "community-1")
	subID, err := w.Submit(ctx, "member-1", "community-1", taskID, "submission for double review", nil)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if _, err := w.Decide(ctx, subID, true, "mod-1", nil, nil); err != nil {
		t.Fatalf("first decide failed: %v", err)
	}

	_, err = w.Decide(ctx, subID, false, "mod-2", nil, nil)
	if !errors.Is(err, models.ErrInvalidState) {
		t.Errorf("second decide: expected ErrInvalidState, got %v", err)
	}

	// XP from the first decision stands alone.
	profile, err := env.profiles.Get(ctx, "member-1", "community-1")
	if err != nil {
		t.Fatalf("failed to fetch profile: %v", err)
	}
	if profile.XP != 50 {
		t.Errorf("profile xp = %d, want 50 from the single settlement", profile.XP)
	}
}

func TestDecide_SettlementFailureSurfaced(t *testing.T) {
	env := newTestEnv(t)
	w := env.newWorkflow(env.newEngine(nil, nil))
	ctx := context.Background()

	taskID := publishTask(t, w, "community-1")
	subID, err := w.Submit(ctx, "member-1", "community-1", taskID, "finished before the outage", nil)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// Break the settlement path after the decision can still be recorded.
	if err := env.gdb.Migrator().DropTable(&gormModels.XPLog{}); err != nil {
		t.Fatalf("failed to drop xp_logs: %v", err)
	}

	_, err = w.Decide(ctx, subID, true, "mod-1", nil, nil)
	var pde *models.PartialDecisionError
	if !errors.As(err, &pde) {
		t.Fatalf("expected PartialDecisionError, got %v", err)
	}
	if pde.SubmissionID != subID {
		t.Errorf("error carries submission %d, want %d", pde.SubmissionID, subID)
	}

	// The decision stands even though the grant never landed.
	view, err := env.subs.GetByID(ctx, subID)
	if err != nil {
		t.Fatalf("failed to fetch submission: %v", err)
	}
	if view.Status != constants.SubmissionApproved {
		t.Errorf("status = %q, want approved", view.Status)
	}
	if view.XPAwarded != 50 {
		t.Errorf("xp_awarded = %d, want the recorded 50", view.XPAwarded)
	}

	profile, err := env.profiles.Get(ctx, "member-1", "community-1")
	if err != nil {
		t.Fatalf("failed to fetch profile: %v", err)
	}
	if profile.XP != 0 {
		t.Errorf("profile xp = %d, want 0 when the settlement rolled back", profile.XP)
	}
	if profile.ApprovedSubmissions != 0 {
		t.Errorf("approved counter = %d, want 0 pending reconciliation", profile.ApprovedSubmissions)
	}
}

func TestDecide_NotFound(t *testing.T) {
	env := newTestEnv(t)
	w := env.newWorkflow(env.newEngine(nil, nil))

	_, err := w.Decide(context.Background(), 999, true, "mod-1", nil, nil)
	if !errors.Is(err, models.ErrSubmissionNotFound) {
		t.Errorf("expected ErrSubmissionNotFound, got %v", err)
	}
}

func TestSubmit_EvidenceBounds(t *testing.T) {
	env := newTestEnv(t)
	w := env.newWorkflow(env.newEngine(nil, nil))
	ctx := context.Background()

	taskID := publishTask(t, w, "community-1")

	_, err := w.Submit(ctx, "member-1", "community-1", taskID, "too short", nil)
	var verr *models.ValidationError
	if !errors.As(err, &verr) || verr.Field != "evidence" {
		t.Errorf("short evidence: expected evidence ValidationError, got %v", err)
	}

	_, err = w.Submit(ctx, "member-1", "community-1", taskID, strings.Repeat("x", 1001), nil)
	if !errors.As(err, &verr) || verr.Field != "evidence" {
		t.Errorf("long evidence: expected evidence ValidationError, got %v", err)
	}
}

func TestSubmit_DuplicateRejected(t *testing.T) {
	env := newTestEnv(t)
	w := env.newWorkflow(env.newEngine(nil, nil))
	ctx := context.Background()

	taskID := publishTask(t, w, "community-1")

	if _, err := w.Submit(ctx, "member-1", "community-1", taskID, "my first and only attempt", nil); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	_, err := w.Submit(ctx, "member-1", "community-1", taskID, "trying the same task again", nil)
	if !errors.Is(err, models.ErrDuplicateSubmission) {
		t.Errorf("expected ErrDuplicateSubmission, got %v", err)
	}
}

func TestSubmit_InactiveOrForeignTask(t *testing.T) {
	env := newTestEnv(t)
	w := env.newWorkflow(env.newEngine(nil, nil))
	ctx := context.Background()

	taskID := publishTask(t, w, "community-1")
	if err := w.DeactivateTask(ctx, taskID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	_, err := w.Submit(ctx, "member-1", "community-1", taskID, "too late for this one now", nil)
	if !errors.Is(err, models.ErrTaskNotFound) {
		t.Errorf("inactive task: expected ErrTaskNotFound, got %v", err)
	}

	otherID := publishTask(t, w, "community-2")
	_, err = w.Submit(ctx, "member-1", "community-1", otherID, "wrong community entirely here", nil)
	if !errors.Is(err, models.ErrTaskNotFound) {
		t.Errorf("foreign task: expected ErrTaskNotFound, got %v", err)
	}
}

func TestListAvailableTasks_HidesSubmitted(t *testing.T) {
	env := newTestEnv(t)
	w := env.newWorkflow(env.newEngine(nil, nil))
	ctx := context.Background()

	taskID := publishTask(t, w, "community-1")
	other, err := w.CreateTask(ctx, "Write a guide", "Document the onboarding flow", 30, "mod-1", "community-1")
	if err != nil {
		t.Fatalf("failed to publish task: %v", err)
	}

	subID, err := w.Submit(ctx, "member-1", "community-1", taskID, "logo attached in the thread", nil)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	reason := "wrong format"
	if _, err := w.Decide(ctx, subID, false, "mod-1", &reason, nil); err != nil {
		t.Fatalf("decide failed: %v", err)
	}

	available, err := w.ListAvailableTasks(ctx, "community-1", "member-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(available) != 1 || available[0].ID != other.ID {
		t.Errorf("available = %+v, want only the unsubmitted task", available)
	}

	all, err := w.ListActiveTasks(ctx, "community-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("active tasks = %d, want 2", len(all))
	}
}

func TestPendingQueue(t *testing.T) {
	env := newTestEnv(t)
	w := env.newWorkflow(env.newEngine(nil, nil))
	ctx := context.Background()

	taskID := publishTask(t, w, "community-1")

	first, err := w.Submit(ctx, "member-1", "community-1", taskID, "first member's submission", nil)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	second, err := w.Submit(ctx, "member-2", "community-1", taskID, "second member's submission", nil)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	pending, err := w.ListPendingSubmissions(ctx, "community-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}

	if _, err := w.Decide(ctx, first, true, "mod-1", nil, nil); err != nil {
		t.Fatalf("decide failed: %v", err)
	}

	pending, err = w.ListPendingSubmissions(ctx, "community-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != second {
		t.Errorf("pending after decision = %+v, want only the second submission", pending)
	}
}
