package service

import (
	"context"
	"slices"
	"strconv"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/okian/inhouse/internal/config"
	"github.com/okian/inhouse/internal/domain/lifecycle"
	"github.com/okian/inhouse/internal/domain/model"
	"github.com/okian/inhouse/internal/domain/pool"
	"github.com/okian/inhouse/pkg/metrics"
)

// Tournament is the state of one guild: its pool, the current cycle and the
// matches formed from it. Every field is guarded by the instance lock.
type Tournament struct {
	guildID string
	policy  string
	sem     chan struct{}

	pool       *pool.Pool
	matches    map[string]*lifecycle.Match
	order      []string
	cycle      cycle
	generation uint64
}

// cycle is one intake round. While Pending, the optimizer runs off-lock and
// Placed holds the participants taken from the pool for it.
type cycle struct {
	ID         string
	Seed       int64
	StartedAt  time.Time
	Pending    bool
	Placed     []model.Participant
	Volunteers []model.Participant
}

func newTournament(guildID, policy string) *Tournament {
	return &Tournament{
		guildID: guildID,
		policy:  policy,
		sem:     make(chan struct{}, 1),
		pool:    pool.New(),
		matches: make(map[string]*lifecycle.Match),
	}
}

// acquire takes the instance lock according to the lock policy.
func (t *Tournament) acquire(ctx context.Context) error {
	if t.policy == config.LockPolicyWait {
		return t.wait(ctx)
	}
	select {
	case t.sem <- struct{}{}:
		return nil
	default:
		return ErrConcurrentModification
	}
}

// wait takes the instance lock regardless of policy.
func (t *Tournament) wait(ctx context.Context) error {
	select {
	case t.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Tournament) release() { <-t.sem }

func (t *Tournament) match(id string) (*lifecycle.Match, error) {
	m, ok := t.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return m, nil
}

func (t *Tournament) add(m *lifecycle.Match) {
	t.matches[m.ID] = m
	t.order = append(t.order, m.ID)
}

// activeMatch returns the unfinished match id participant plays in.
func (t *Tournament) activeMatch(participantID string) (string, bool) {
	for _, id := range t.order {
		m := t.matches[id]
		if m.State.Terminal() {
			continue
		}
		if _, ok := m.Assignment.Locate(participantID); ok {
			return id, true
		}
	}
	return "", false
}

// placed reports whether participant was taken into a cycle still forming.
func (t *Tournament) placed(participantID string) bool {
	if !t.cycle.Pending {
		return false
	}
	return slices.ContainsFunc(t.cycle.Placed, func(p model.Participant) bool { return p.ID == participantID }) ||
		slices.ContainsFunc(t.cycle.Volunteers, func(p model.Participant) bool { return p.ID == participantID })
}

// prune drops finished matches of earlier cycles.
func (t *Tournament) prune() {
	kept := t.order[:0]
	for _, id := range t.order {
		m := t.matches[id]
		if m.State.Terminal() && m.CycleID != t.cycle.ID {
			delete(t.matches, id)
			continue
		}
		kept = append(kept, id)
	}
	t.order = kept
}

func (t *Tournament) reportPool() {
	metrics.UpdatePoolSize(t.guildID, pool.StatusQueued.String(), t.pool.Count(pool.StatusQueued))
	metrics.UpdatePoolSize(t.guildID, pool.StatusVolunteered.String(), t.pool.Count(pool.StatusVolunteered))
}

// Snapshot is a point-in-time view of a tournament.
type Snapshot struct {
	GuildID string             `json:"guild_id"`
	Cycle   *CycleView         `json:"cycle,omitempty"`
	Pool    []pool.Entry       `json:"pool"`
	Matches []*lifecycle.Match `json:"matches"`
}

// CycleView describes the current cycle.
type CycleView struct {
	ID         string    `json:"id"`
	Seed       int64     `json:"seed"`
	StartedAt  time.Time `json:"started_at"`
	Pending    bool      `json:"pending"`
	Volunteers []string  `json:"volunteers"`
}

func (t *Tournament) snapshot() Snapshot {
	s := Snapshot{
		GuildID: t.guildID,
		Pool:    t.pool.Entries(),
		Matches: make([]*lifecycle.Match, 0, len(t.order)),
	}
	if t.cycle.ID != "" {
		v := &CycleView{
			ID:         t.cycle.ID,
			Seed:       t.cycle.Seed,
			StartedAt:  t.cycle.StartedAt,
			Pending:    t.cycle.Pending,
			Volunteers: make([]string, len(t.cycle.Volunteers)),
		}
		for i, p := range t.cycle.Volunteers {
			v.Volunteers[i] = p.ID
		}
		s.Cycle = v
	}
	for _, id := range t.order {
		s.Matches = append(s.Matches, t.matches[id].Clone())
	}
	return s
}

// matchSeed derives a per-group seed so each group's search is reproducible
// on its own.
func matchSeed(cycleSeed int64, group int) int64 {
	return int64(xxh3.HashStringSeed(strconv.Itoa(group), uint64(cycleSeed))) //nolint:gosec // seed bits, not a size
}
