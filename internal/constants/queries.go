package constants

// Read-side SQL executed through sqlx. Placeholders use `?` and are rebound
// to the active driver's bindvar style before execution.
const (
	LeaderboardByCommunity = `
	SELECT member_id, xp, level, approved_submissions
	FROM profiles
	WHERE community_id = ?
	ORDER BY xp DESC
	LIMIT ?
	`

	MemberXP = `
	SELECT xp FROM profiles WHERE community_id = ? AND member_id = ?
	`

	MembersAboveXP = `
	SELECT COUNT(*) FROM profiles WHERE community_id = ? AND xp > ?
	`

	MemberSubmissionCount = `
	SELECT COUNT(*) FROM submissions WHERE community_id = ? AND member_id = ?
	`

	MemberApprovedCount = `
	SELECT COUNT(*) FROM submissions
	WHERE community_id = ? AND member_id = ? AND status = ?
	`

	MemberLifetimeXP = `
	SELECT COALESCE(SUM(delta), 0) FROM xp_logs
	WHERE community_id = ? AND member_id = ? AND delta > 0
	`
)
