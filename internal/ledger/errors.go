package ledger

import "errors"

// Errors returned by ledger operations. A failed operation leaves the
// profile untouched.
var (
	ErrInvalidAmount      = errors.New("invalid points amount")
	ErrInvalidDescription = errors.New("transaction description is required")
	ErrInvalidSource      = errors.New("unknown transaction source")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrRewardNotFound     = errors.New("reward not found")
	ErrRewardUnavailable  = errors.New("reward is not available")
	ErrContestNotFound    = errors.New("contest not found")
	ErrTierMismatch       = errors.New("fan tier is below the contest minimum")
	ErrPlatformNotFound   = errors.New("social profile not found")
	ErrUnknownTier        = errors.New("unknown tier")
	ErrUnknownAction      = errors.New("unknown profile action")
)
