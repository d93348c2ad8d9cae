package constants

// Submission lifecycle states. A submission starts PENDING and moves to
// exactly one of the terminal states.
const (
	SubmissionPending  = "PENDING"
	SubmissionApproved = "APPROVED"
	SubmissionRejected = "REJECTED"
)

// Input bounds enforced by the workflow layer.
const (
	MinEvidenceLen    = 10
	MaxEvidenceLen    = 1000
	MaxTitleLen       = 100
	MaxDescriptionLen = 1000
	MinTaskReward     = 1
	MaxTaskReward     = 1000
)

const DefaultLeaderboardLimit = 10
