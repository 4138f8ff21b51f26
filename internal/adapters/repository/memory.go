package repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/okian/inhouse/internal/domain/model"
	"github.com/okian/inhouse/internal/domain/types"
	"github.com/okian/inhouse/pkg/metrics"
)

// MemoryDirectory keeps everything in process memory.
type MemoryDirectory struct {
	mu      sync.RWMutex
	byID    map[string]model.Participant
	records []model.MatchRecord
	scored  map[string]struct{}
	opts    options
}

var _ Directory = (*MemoryDirectory)(nil)

// NewMemoryDirectory creates an empty directory.
func NewMemoryDirectory(opts ...Option) *MemoryDirectory {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryDirectory{
		byID:   make(map[string]model.Participant),
		scored: make(map[string]struct{}),
		opts:   o,
	}
}

func (d *MemoryDirectory) Get(_ context.Context, id string) (model.Participant, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.byID[id]
	if !ok {
		return model.Participant{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return clone(p), nil
}

func (d *MemoryDirectory) Upsert(_ context.Context, p model.Participant) (model.Participant, error) {
	if err := validateParticipant(p); err != nil {
		return model.Participant{}, err
	}
	d.mu.Lock()
	if old, ok := d.byID[p.ID]; ok {
		p.Counters = old.Counters
		p.CreatedAt = old.CreatedAt
	} else {
		p.Counters = model.Counters{}
		p.CreatedAt = d.opts.clock()
	}
	d.byID[p.ID] = clone(p)
	n := len(d.byID)
	d.mu.Unlock()

	metrics.UpdateParticipants(n)
	return p, nil
}

func (d *MemoryDirectory) List(_ context.Context) ([]model.Participant, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]model.Participant, 0, len(d.byID))
	for _, p := range d.byID {
		out = append(out, clone(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (d *MemoryDirectory) Deactivate(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	p.Active = false
	d.byID[id] = p
	return nil
}

func (d *MemoryDirectory) ApplyAwards(_ context.Context, batch model.AwardBatch) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, dup := d.scored[batch.MatchID]; dup {
		return fmt.Errorf("%w: %s", model.ErrDuplicateRecord, batch.MatchID)
	}
	for _, a := range batch.Awards {
		if _, ok := d.byID[a.ParticipantID]; !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, a.ParticipantID)
		}
	}
	for _, a := range batch.Awards {
		p := d.byID[a.ParticipantID]
		p.Counters = p.Counters.Add(a.Delta)
		d.byID[a.ParticipantID] = p
	}
	d.scored[batch.MatchID] = struct{}{}
	d.records = append(d.records, batch.Record)
	return nil
}

func (d *MemoryDirectory) AddToxicity(_ context.Context, id string, delta int) (model.Participant, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.byID[id]
	if !ok {
		return model.Participant{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	p.Counters.Toxicity += delta
	d.byID[id] = p
	return clone(p), nil
}

func (d *MemoryDirectory) Matches(ctx context.Context, limit int) ([]model.MatchRecord, error) {
	return d.matches(limit, func(model.MatchRecord) bool { return true })
}

func (d *MemoryDirectory) ParticipantMatches(_ context.Context, id string, limit int) ([]model.MatchRecord, error) {
	return d.matches(limit, func(r model.MatchRecord) bool {
		_, ok := r.Teams.Locate(id)
		return ok
	})
}

func (d *MemoryDirectory) matches(limit int, keep func(model.MatchRecord) bool) ([]model.MatchRecord, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]model.MatchRecord, 0, min(limit, len(d.records)))
	for i := len(d.records) - 1; i >= 0 && len(out) < limit; i-- {
		if keep(d.records[i]) {
			out = append(out, d.records[i])
		}
	}
	return out, nil
}

func (d *MemoryDirectory) Standings(_ context.Context, limit int) ([]types.Standing, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}
	d.mu.RLock()
	all := make([]types.Standing, 0, len(d.byID))
	for _, p := range d.byID {
		all = append(all, toStanding(p))
	}
	d.mu.RUnlock()

	sortStandings(all)
	if len(all) > limit {
		all = all[:limit]
	}
	assignRanksWithTies(all)
	return all, nil
}

func (d *MemoryDirectory) Count(_ context.Context) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byID)
}

// Close is a no-op.
func (d *MemoryDirectory) Close() error { return nil }

func clone(p model.Participant) model.Participant {
	p.Preferences = slices.Clone(p.Preferences)
	return p
}
