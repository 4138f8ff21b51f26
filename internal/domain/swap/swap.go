// Package swap applies manual slot exchanges to a team assignment.
package swap

import (
	"fmt"

	"github.com/okian/inhouse/internal/domain/fitness"
	"github.com/okian/inhouse/internal/domain/model"
)

// Manager exchanges slots and re-scores the result.
type Manager struct {
	eval *fitness.Evaluator
}

// New creates a Manager scoring with eval.
func New(eval *fitness.Evaluator) *Manager {
	return &Manager{eval: eval}
}

// Swap exchanges the slots (team and role) of participants a and b and
// returns the new assignment with its score. The input is not modified.
// Swapping the same pair twice restores the original assignment.
func (m *Manager) Swap(roster fitness.Roster, current model.TeamAssignment, a, b string) (model.TeamAssignment, fitness.Breakdown, error) {
	if a == b {
		return current, fitness.Breakdown{}, fmt.Errorf("%w: cannot swap %q with itself", ErrInvalidSwapTarget, a)
	}
	slotA, ok := current.Locate(a)
	if !ok {
		return current, fitness.Breakdown{}, fmt.Errorf("%w: %q not in assignment", ErrInvalidSwapTarget, a)
	}
	slotB, ok := current.Locate(b)
	if !ok {
		return current, fitness.Breakdown{}, fmt.Errorf("%w: %q not in assignment", ErrInvalidSwapTarget, b)
	}

	next := current
	next.Set(slotA, b)
	next.Set(slotB, a)
	score, err := m.eval.Score(roster, next)
	if err != nil {
		return current, fitness.Breakdown{}, err
	}
	return next, score, nil
}
