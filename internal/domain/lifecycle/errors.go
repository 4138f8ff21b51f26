package lifecycle

import "errors"

// Sentinel kinds for lifecycle operations.
var (
	ErrInvalidTransition = errors.New("invalid match transition")
	ErrInvalidVote       = errors.New("invalid mvp vote")
	ErrNoWinner          = errors.New("winner not declared")
)
