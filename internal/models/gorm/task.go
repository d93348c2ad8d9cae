package gorm

import "time"

// Task is a moderator-published unit of work with a fixed XP reward.
// Retiring a task flips Active off; rows are never deleted because
// historical submissions keep referencing them.
type Task struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Title       string    `gorm:"column:title;size:100;not null"`
	Description string    `gorm:"column:description;size:1000;not null"`
	XPReward    int64     `gorm:"column:xp_reward;not null"`
	CreatedBy   string    `gorm:"column:created_by;not null"`
	CommunityID string    `gorm:"column:community_id;not null;index:idx_tasks_community"`
	Active      bool      `gorm:"column:active;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Task) TableName() string {
	return "tasks"
}
