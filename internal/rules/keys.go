package rules

// Response keys. Each names a list of variants in the response catalog.
const (
	KeyFishingTimeout = "fishing_responses_timeout"
	KeyFishingNone    = "fishing_responses_none"
	KeyFishingValue   = "fishing_responses_value"
	KeyFishingOne     = "fishing_responses_one"
	KeyFishingMany    = "fishing_responses_many"
	KeyFishingBonus   = "fishing_responses_bonus"

	KeyStrengthTiers  = "strength_responses_score"
	KeyStrengthWeak   = "strength_responses_weak"
	KeyStrengthStrong = "strength_responses_strong"

	KeyWheelColour = "wheel_responses_colour"
	KeyWheelWinA   = "wheel_responses_win_a"
	KeyWheelWinB   = "wheel_responses_win_b"
	KeyWheelLoseA  = "wheel_responses_lose_a"
	KeyWheelLoseB  = "wheel_responses_lose_b"

	KeyFortune = "fortune_responses"

	KeySubmissionPrefix = "submission_responses_"
	KeyPicrossAward     = "picross_responses_award"

	KeyDonated = "balance_responses_donated"
	KeyAward   = "award_responses"
)
