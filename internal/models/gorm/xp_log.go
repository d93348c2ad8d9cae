package gorm

import "time"

// XPLog is an append-only audit record of one XP change. GrantedBy is nil
// for system-initiated grants. Rows are never mutated or deleted; the sum of
// deltas for a (community, member) pair equals that profile's XP.
type XPLog struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement"`
	MemberID     string    `gorm:"column:member_id;not null;index:idx_xp_logs_member,priority:2"`
	CommunityID  string    `gorm:"column:community_id;not null;index:idx_xp_logs_member,priority:1"`
	Delta        int64     `gorm:"column:delta;not null"`
	Reason       string    `gorm:"column:reason;not null"`
	GrantedBy    *string   `gorm:"column:granted_by"`
	SubmissionID *uint     `gorm:"column:submission_id"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for GORM
func (XPLog) TableName() string {
	return "xp_logs"
}
