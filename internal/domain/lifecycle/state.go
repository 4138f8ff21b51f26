package lifecycle

import "fmt"

// State of a match.
type State int

// Match states. Matches only move forward through them.
const (
	StateProposed State = iota
	StateInProgress
	StateAwaitingResult
	StateMvpVoting
	StateMvpSkipped
	StateCompleted
	StateCancelled
)

var stateNames = [...]string{
	StateProposed:       "proposed",
	StateInProgress:     "in_progress",
	StateAwaitingResult: "awaiting_result",
	StateMvpVoting:      "mvp_voting",
	StateMvpSkipped:     "mvp_skipped",
	StateCompleted:      "completed",
	StateCancelled:      "cancelled",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool { return s == StateCompleted || s == StateCancelled }
