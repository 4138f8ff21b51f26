// Package fitness scores team assignments. Lower is better.
//
// The score has two parts: the skill imbalance between the two players
// facing each other in every role, and a penalty for playing roles low in
// one's preference list. The evaluator is pure; equal inputs give equal
// scores.
package fitness

import (
	"fmt"
	"math"

	"github.com/okian/inhouse/internal/domain/model"
)

// DefaultPreferenceWeight balances one preference rank against one point of
// prowess difference.
const DefaultPreferenceWeight = 1.0

// Breakdown is a score split into its terms.
type Breakdown struct {
	Imbalance float64 `json:"imbalance"`
	// Penalty is the unweighted sum of preference ranks.
	Penalty int     `json:"penalty"`
	Total   float64 `json:"total"`
}

// Evaluator computes fitness.
type Evaluator struct {
	weight float64
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithPreferenceWeight sets the multiplier of the preference penalty.
func WithPreferenceWeight(w float64) Option {
	return func(e *Evaluator) {
		if w >= 0 {
			e.weight = w
		}
	}
}

// New creates an Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{weight: DefaultPreferenceWeight}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Weight returns the preference weight in use.
func (e *Evaluator) Weight() float64 { return e.weight }

// Roster resolves participant ids of one group.
type Roster map[string]*model.Participant

// NewRoster indexes the members of g.
func NewRoster(g model.Group) Roster {
	r := make(Roster, len(g.Members))
	for i := range g.Members {
		r[g.Members[i].ID] = &g.Members[i]
	}
	return r
}

// Score returns the breakdown of assignment a.
func (e *Evaluator) Score(roster Roster, a model.TeamAssignment) (Breakdown, error) {
	var b Breakdown
	for _, role := range model.Roles() {
		blue, ok := roster[a.Blue[role]]
		if !ok {
			return Breakdown{}, fmt.Errorf("%w: %q", ErrUnknownParticipant, a.Blue[role])
		}
		red, ok := roster[a.Red[role]]
		if !ok {
			return Breakdown{}, fmt.Errorf("%w: %q", ErrUnknownParticipant, a.Red[role])
		}
		b.Imbalance += math.Abs(blue.Prowess[role] - red.Prowess[role])
		b.Penalty += blue.PreferenceRank(role) + red.PreferenceRank(role)
	}
	b.Total = b.Imbalance + e.weight*float64(b.Penalty)
	return b, nil
}

// Table is a precomputed cost table for one group, indexed by member
// position. The optimizer scores candidates through it without map lookups.
type Table struct {
	weight  float64
	prowess [model.GroupSize][model.NumRoles]float64
	rank    [model.GroupSize][model.NumRoles]int
}

// Table builds the cost table for members, which must hold exactly
// model.GroupSize participants.
func (e *Evaluator) Table(members []model.Participant) Table {
	t := Table{weight: e.weight}
	for i := range min(len(members), model.GroupSize) {
		t.prowess[i] = members[i].Prowess
		for _, r := range model.Roles() {
			t.rank[i][r] = members[i].PreferenceRank(r)
		}
	}
	return t
}

// Score returns the breakdown for member positions indexed by role.
func (t *Table) Score(blue, red *[model.NumRoles]int) Breakdown {
	var b Breakdown
	for r := range model.NumRoles {
		b.Imbalance += math.Abs(t.prowess[blue[r]][r] - t.prowess[red[r]][r])
		b.Penalty += t.rank[blue[r]][r] + t.rank[red[r]][r]
	}
	b.Total = b.Imbalance + t.weight*float64(b.Penalty)
	return b
}
