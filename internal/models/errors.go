package models

import (
	"errors"
	"fmt"
)

// Engine error kinds. Repositories and services return these so the
// presentation layer can map them to user-facing responses.
var (
	ErrTaskNotFound        = errors.New("task not found or inactive")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrInvalidState        = errors.New("submission has already been decided")
	ErrDuplicateSubmission = errors.New("member already has a submission for this task")
	ErrProfileNotFound     = errors.New("profile not found")
)

// ValidationError reports an input that violates the engine's bounds.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PartialDecisionError signals that a submission decision was persisted but
// the XP settlement that follows it failed. The submission is decided and
// ungranted; moderators must reconcile manually.
type PartialDecisionError struct {
	SubmissionID uint
	Err          error
}

func (e *PartialDecisionError) Error() string {
	return fmt.Sprintf("submission %d decided but XP settlement failed: %v", e.SubmissionID, e.Err)
}

func (e *PartialDecisionError) Unwrap() error {
	return e.Err
}
