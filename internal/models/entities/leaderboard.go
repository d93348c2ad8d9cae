package entities

// LeaderboardRow is one ranked entry for a community, scanned off the
// read-side leaderboard query.
type LeaderboardRow struct {
	MemberID            string `db:"member_id" json:"member_id"`
	XP                  int64  `db:"xp" json:"xp"`
	Level               int    `db:"level" json:"level"`
	ApprovedSubmissions int    `db:"approved_submissions" json:"approved_submissions"`
}

// MemberStats aggregates a member's submission history and lifetime earned
// XP (positive deltas only) from the audit log.
type MemberStats struct {
	TotalSubmissions    int   `db:"total_submissions" json:"total_submissions"`
	ApprovedSubmissions int   `db:"approved_submissions" json:"approved_submissions"`
	LifetimeXP          int64 `db:"lifetime_xp" json:"lifetime_xp"`
}
