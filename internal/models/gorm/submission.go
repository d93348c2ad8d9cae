package gorm

import "time"

// Submission is a member's claim of task completion. TaskID is nil for
// manual, ad-hoc claims not tied to a published task. Status moves from
// PENDING to exactly one terminal state and the row is never deleted.
type Submission struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement"`
	MemberID     string    `gorm:"column:member_id;not null;index:idx_submissions_member,priority:2"`
	CommunityID  string    `gorm:"column:community_id;not null;index:idx_submissions_member,priority:1;index:idx_submissions_pending,priority:1"`
	TaskID       *uint     `gorm:"column:task_id"`
	Evidence     string    `gorm:"column:evidence;size:1000;not null"`
	Status       string    `gorm:"column:status;not null;default:PENDING;index:idx_submissions_pending,priority:2"`
	ReviewedBy   *string   `gorm:"column:reviewed_by"`
	ReviewReason *string   `gorm:"column:review_reason"`
	XPAwarded    int64     `gorm:"column:xp_awarded;not null;default:0"`
	MessageRef   *string   `gorm:"column:message_ref"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	Task *Task `gorm:"foreignKey:TaskID"`
}

// TableName specifies the table name for GORM
func (Submission) TableName() string {
	return "submissions"
}
