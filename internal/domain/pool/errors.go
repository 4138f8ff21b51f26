package pool

import "errors"

// Sentinel kinds for pool operations.
var (
	ErrNotEligible   = errors.New("participant has not completed onboarding")
	ErrAlreadyQueued = errors.New("participant already in the pool")
	ErrNotQueued     = errors.New("participant not in the pool")
)
