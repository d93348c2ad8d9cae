package gorm

import "time"

// Profile is one (community, member) pair's XP record. Level is derived from
// XP through the level curve but persisted for fast reads.
type Profile struct {
	ID                  uint      `gorm:"column:id;primaryKey;autoIncrement"`
	MemberID            string    `gorm:"column:member_id;not null;uniqueIndex:idx_profiles_member_community"`
	CommunityID         string    `gorm:"column:community_id;not null;uniqueIndex:idx_profiles_member_community;index:idx_profiles_community_xp,priority:1"`
	XP                  int64     `gorm:"column:xp;not null;default:0;index:idx_profiles_community_xp,priority:2"`
	Level               int       `gorm:"column:level;not null;default:1"`
	TotalSubmissions    int       `gorm:"column:total_submissions;not null;default:0"`
	ApprovedSubmissions int       `gorm:"column:approved_submissions;not null;default:0"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Profile) TableName() string {
	return "profiles"
}
