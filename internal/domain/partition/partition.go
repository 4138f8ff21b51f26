// Package partition splits a pool into fixed-size groups ordered by skill.
package partition

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/okian/inhouse/internal/domain/model"
)

// Aggregate reduces a participant's per-role prowess to one skill measure.
type Aggregate func(p *model.Participant) float64

// Mean averages prowess over the preferred roles (all roles when none).
func Mean(p *model.Participant) float64 { return p.Aggregate() }

// Max takes the best prowess over the preferred roles (all roles when none).
func Max(p *model.Participant) float64 {
	roles := p.Preferences
	if len(roles) == 0 {
		roles = model.Roles()
	}
	best := p.Prowess[roles[0]]
	for _, r := range roles[1:] {
		best = max(best, p.Prowess[r])
	}
	return best
}

// Partitioner slices participants into groups of model.GroupSize.
type Partitioner struct {
	aggregate Aggregate
}

// Option configures a Partitioner.
type Option func(*Partitioner)

// WithAggregate replaces the default Mean skill measure.
func WithAggregate(fn Aggregate) Option {
	return func(p *Partitioner) {
		if fn != nil {
			p.aggregate = fn
		}
	}
}

// New creates a Partitioner.
func New(opts ...Option) *Partitioner {
	p := &Partitioner{aggregate: Mean}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is the outcome of one partition.
type Result struct {
	Groups []model.Group
	// Remainder holds the lowest-ranked participants that did not fill a
	// group. They are volunteer candidates for this cycle.
	Remainder []model.Participant
}

// Partition sorts participants by aggregate skill descending, ties by id
// ascending, and cuts contiguous groups. The input slice is not modified.
func (p *Partitioner) Partition(participants []model.Participant) (Result, error) {
	if len(participants) < model.GroupSize {
		return Result{}, fmt.Errorf("%w: have %d, need %d", ErrInsufficientParticipants, len(participants), model.GroupSize)
	}

	type ranked struct {
		p     model.Participant
		skill float64
	}
	rs := make([]ranked, len(participants))
	for i := range participants {
		rs[i] = ranked{p: participants[i], skill: p.aggregate(&participants[i])}
	}
	slices.SortStableFunc(rs, func(a, b ranked) int {
		if c := cmp.Compare(b.skill, a.skill); c != 0 {
			return c
		}
		return cmp.Compare(a.p.ID, b.p.ID)
	})

	n := len(rs) / model.GroupSize
	res := Result{Groups: make([]model.Group, n)}
	for g := range n {
		members := make([]model.Participant, model.GroupSize)
		for i := range members {
			members[i] = rs[g*model.GroupSize+i].p
		}
		res.Groups[g] = model.Group{Index: g, Members: members}
	}
	for _, r := range rs[n*model.GroupSize:] {
		res.Remainder = append(res.Remainder, r.p)
	}
	return res, nil
}
