// Package optimizer searches team assignments of one group for low fitness.
//
// The search is a seeded hill climb over slot swaps. States are the ten
// member positions laid out as blue then red, indexed by role. Every
// evaluated state is remembered by an xxh3 hash of its canonical form, so a
// state reached again through a different swap path is not scored twice.
package optimizer

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/okian/inhouse/internal/domain/fitness"
	"github.com/okian/inhouse/internal/domain/model"
)

// StopReason explains why a search ended.
type StopReason string

// Stop reasons.
const (
	StopThreshold    StopReason = "threshold"
	StopEpochs       StopReason = "epochs"
	StopDeadline     StopReason = "deadline"
	StopCanceled     StopReason = "canceled"
	StopLocalOptimum StopReason = "local_optimum"
)

// Stats describe one search.
type Stats struct {
	Seed           int64         `json:"seed"`
	InitialFitness float64       `json:"initial_fitness"`
	BestFitness    float64       `json:"best_fitness"`
	Epochs         int           `json:"epochs"`
	Evaluations    int           `json:"evaluations"`
	MemoHits       int           `json:"memo_hits"`
	StopReason     StopReason    `json:"stop_reason"`
	Elapsed        time.Duration `json:"elapsed"`
}

// Result is the best assignment found.
type Result struct {
	Assignment model.TeamAssignment `json:"assignment"`
	Fitness    fitness.Breakdown    `json:"fitness"`
	Stats      Stats                `json:"stats"`
}

// Optimizer runs searches. It is safe for concurrent use; each search keeps
// its own state.
type Optimizer struct {
	eval   *fitness.Evaluator
	budget Budget
	now    func() time.Time
}

// New creates an Optimizer scoring with eval.
func New(eval *fitness.Evaluator, opts ...Option) *Optimizer {
	o := &Optimizer{eval: eval, budget: DefaultBudget, now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Budget returns the configured budget.
func (o *Optimizer) Budget() Budget { return o.budget }

type moveKind uint8

const (
	crossSwap moveKind = iota // blue[a] <-> red[b]
	blueSwap                  // blue[a] <-> blue[b]
	redSwap                   // red[a] <-> red[b]
)

type move struct {
	kind moveKind
	a, b int
}

// moves is the full neighbourhood: 25 cross-team slot swaps and 10 role
// swaps inside each team.
var moves = func() []move {
	var out []move
	for a := range model.NumRoles {
		for b := range model.NumRoles {
			out = append(out, move{crossSwap, a, b})
		}
	}
	for _, k := range []moveKind{blueSwap, redSwap} {
		for a := range model.NumRoles {
			for b := a + 1; b < model.NumRoles; b++ {
				out = append(out, move{k, a, b})
			}
		}
	}
	return out
}()

type state struct {
	blue, red [model.NumRoles]int
}

func (s state) apply(m move) state {
	switch m.kind {
	case crossSwap:
		s.blue[m.a], s.red[m.b] = s.red[m.b], s.blue[m.a]
	case blueSwap:
		s.blue[m.a], s.blue[m.b] = s.blue[m.b], s.blue[m.a]
	case redSwap:
		s.red[m.a], s.red[m.b] = s.red[m.b], s.red[m.a]
	}
	return s
}

// key hashes the canonical form: the side holding the lower top-lane
// position is written first, so an assignment and its mirror share a key.
func (s state) key() uint64 {
	var buf [model.GroupSize]byte
	first, second := &s.blue, &s.red
	if s.red[0] < s.blue[0] {
		first, second = &s.red, &s.blue
	}
	for r := range model.NumRoles {
		buf[r] = byte(first[r])
		buf[model.NumRoles+r] = byte(second[r])
	}
	return xxh3.Hash(buf[:])
}

type search struct {
	table   fitness.Table
	memo    map[uint64]struct{}
	stats   Stats
	current state
	score   fitness.Breakdown
}

// visit scores s unless it was seen before. Every seen state scored no
// better than the state current when it was visited, so skipping it never
// hides an improvement.
func (sr *search) visit(s state) (fitness.Breakdown, bool) {
	k := s.key()
	if _, seen := sr.memo[k]; seen {
		sr.stats.MemoHits++
		return fitness.Breakdown{}, false
	}
	sr.memo[k] = struct{}{}
	sr.stats.Evaluations++
	return sr.table.Score(&s.blue, &s.red), true
}

// step tries the given moves and adopts the best strict improvement.
func (sr *search) step(candidates []move) bool {
	best, bestScore, improved := sr.current, sr.score, false
	for _, m := range candidates {
		next := sr.current.apply(m)
		score, fresh := sr.visit(next)
		if fresh && score.Total < bestScore.Total {
			best, bestScore, improved = next, score, true
		}
	}
	if improved {
		sr.current, sr.score = best, bestScore
	}
	return improved
}

// Optimize searches assignments of g starting from a random one drawn from
// seed. The same seed and group give the same result unless the wall-clock
// bound cuts the search short. On context cancellation the best assignment
// so far is returned together with the context error.
func (o *Optimizer) Optimize(ctx context.Context, g model.Group, seed int64) (Result, error) {
	if err := validate(g); err != nil {
		return Result{}, err
	}
	start := o.now()
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible search, not security

	sr := &search{
		table: o.eval.Table(g.Members),
		memo:  make(map[uint64]struct{}, 256),
		stats: Stats{Seed: seed},
	}
	perm := rng.Perm(model.GroupSize)
	copy(sr.current.blue[:], perm[:model.NumRoles])
	copy(sr.current.red[:], perm[model.NumRoles:])
	sr.score, _ = sr.visit(sr.current)
	sr.stats.InitialFitness = sr.score.Total

	b := o.budget
	sampled := b.Neighbors > 0 && b.Neighbors < len(moves)
	var err error
	for {
		if sr.score.Total <= b.Threshold {
			sr.stats.StopReason = StopThreshold
			break
		}
		if b.MaxEpochs >= 0 && sr.stats.Epochs >= b.MaxEpochs {
			sr.stats.StopReason = StopEpochs
			break
		}
		if b.MaxDuration > 0 && o.now().Sub(start) >= b.MaxDuration {
			sr.stats.StopReason = StopDeadline
			break
		}
		if err = ctx.Err(); err != nil {
			sr.stats.StopReason = StopCanceled
			break
		}

		sr.stats.Epochs++
		if sampled {
			idx := rng.Perm(len(moves))[:b.Neighbors]
			candidates := make([]move, len(idx))
			for i, j := range idx {
				candidates[i] = moves[j]
			}
			if sr.step(candidates) {
				continue
			}
		}
		if !sr.step(moves) {
			sr.stats.StopReason = StopLocalOptimum
			break
		}
	}

	sr.stats.BestFitness = sr.score.Total
	sr.stats.Elapsed = o.now().Sub(start)
	res := Result{Fitness: sr.score, Stats: sr.stats}
	for r := range model.NumRoles {
		res.Assignment.Blue[r] = g.Members[sr.current.blue[r]].ID
		res.Assignment.Red[r] = g.Members[sr.current.red[r]].ID
	}
	if err != nil {
		return res, fmt.Errorf("optimize group %d: %w", g.Index, err)
	}
	return res, nil
}

func validate(g model.Group) error {
	if len(g.Members) != model.GroupSize {
		return fmt.Errorf("%w: %d members, want %d", ErrInvalidGroup, len(g.Members), model.GroupSize)
	}
	seen := make(map[string]struct{}, model.GroupSize)
	for _, p := range g.Members {
		if p.ID == "" {
			return fmt.Errorf("%w: empty participant id", ErrInvalidGroup)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: %s listed twice", ErrInvalidGroup, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}
