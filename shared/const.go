package shared

const (
	UserID    = "user_id"
	UserRole  = "user_role"
	SessionID = "session_id"

	// Placeholder shown for hidden achievements that have not been earned yet.
	HiddenAchievementName        = "???"
	HiddenAchievementDescription = "Keep going to reveal this achievement"
)
