package dtos

import (
	"time"

	"questline/engine/internal/levels"
)

// XPChangeResult is the before/after snapshot of one XP grant.
type XPChangeResult struct {
	MemberID    string `json:"member_id"`
	CommunityID string `json:"community_id"`
	OldXP       int64  `json:"old_xp"`
	NewXP       int64  `json:"new_xp"`
	OldLevel    int    `json:"old_level"`
	NewLevel    int    `json:"new_level"`
	LeveledUp   bool   `json:"leveled_up"`

	// RoleGrant is set when the new level has a configured role mapping.
	RoleGrant *RoleGrantIntent `json:"role_grant,omitempty"`
}

// RoleGrantIntent asks the presentation layer to assign a role for a level
// milestone. The engine emits the intent; it never talks to the chat
// platform itself.
type RoleGrantIntent struct {
	IntentID    string `json:"intent_id"`
	MemberID    string `json:"member_id"`
	CommunityID string `json:"community_id"`
	Level       int    `json:"level"`
	RoleID      string `json:"role_id"`
}

// ProfileView composes a profile row with its stats and level progress.
type ProfileView struct {
	MemberID            string          `json:"member_id"`
	CommunityID         string          `json:"community_id"`
	XP                  int64           `json:"xp"`
	Level               int             `json:"level"`
	TotalSubmissions    int             `json:"total_submissions"`
	ApprovedSubmissions int             `json:"approved_submissions"`
	LifetimeXP          int64           `json:"lifetime_xp"`
	Progress            levels.Progress `json:"progress"`
	CreatedAt           time.Time       `json:"created_at"`
}

// TaskView is a task as rendered to members.
type TaskView struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	XPReward    int64     `json:"xp_reward"`
	CreatedBy   string    `json:"created_by"`
	CommunityID string    `json:"community_id"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// SubmissionView is a submission joined with its task's title, description
// and reward. Task fields are zero-valued for manual submissions.
type SubmissionView struct {
	ID              uint      `json:"id"`
	MemberID        string    `json:"member_id"`
	CommunityID     string    `json:"community_id"`
	TaskID          *uint     `json:"task_id,omitempty"`
	TaskTitle       string    `json:"task_title,omitempty"`
	TaskDescription string    `json:"task_description,omitempty"`
	TaskXPReward    int64     `json:"task_xp_reward,omitempty"`
	Evidence        string    `json:"evidence"`
	Status          string    `json:"status"`
	ReviewedBy      *string   `json:"reviewed_by,omitempty"`
	ReviewReason    *string   `json:"review_reason,omitempty"`
	XPAwarded       int64     `json:"xp_awarded"`
	MessageRef      *string   `json:"message_ref,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DecisionResult carries the decided submission and the XP settlement that
// followed it. XPResult is nil for rejections and zero-value awards.
type DecisionResult struct {
	Submission *SubmissionView `json:"submission"`
	XPResult   *XPChangeResult `json:"xp_result,omitempty"`
}
