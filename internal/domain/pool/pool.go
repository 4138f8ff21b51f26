// Package pool holds the participants waiting for the next intake cycle.
//
// A Pool is not safe for concurrent use; the owning tournament serializes
// access under its instance lock.
package pool

import (
	"fmt"
	"time"

	"github.com/okian/inhouse/internal/domain/model"
)

// Status of a pool entry.
type Status int

const (
	// StatusQueued entries are partitioned into groups.
	StatusQueued Status = iota
	// StatusVolunteered entries sit the cycle out for a participation credit.
	StatusVolunteered
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusVolunteered:
		return "volunteered"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Entry is one participant in the pool.
type Entry struct {
	Participant model.Participant `json:"participant"`
	Status      Status            `json:"status"`
	JoinedAt    time.Time         `json:"joined_at"`
}

// Pool keeps entries in join order.
type Pool struct {
	entries []Entry
	index   map[string]int
}

// New returns an empty pool.
func New() *Pool {
	return &Pool{index: make(map[string]int)}
}

// Join queues an eligible participant.
func (p *Pool) Join(participant model.Participant, at time.Time) error {
	if !participant.Eligible() {
		return fmt.Errorf("%w: %s", ErrNotEligible, participant.ID)
	}
	if _, ok := p.index[participant.ID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyQueued, participant.ID)
	}
	p.index[participant.ID] = len(p.entries)
	p.entries = append(p.entries, Entry{Participant: participant, Status: StatusQueued, JoinedAt: at})
	return nil
}

// Leave removes a participant regardless of status.
func (p *Pool) Leave(id string) error {
	if _, ok := p.index[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotQueued, id)
	}
	p.remove(map[string]struct{}{id: {}})
	return nil
}

// Volunteer marks a pooled participant as sitting out. Volunteering twice is
// a no-op.
func (p *Pool) Volunteer(id string) error {
	i, ok := p.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotQueued, id)
	}
	p.entries[i].Status = StatusVolunteered
	return nil
}

// Contains reports whether id is pooled.
func (p *Pool) Contains(id string) bool {
	_, ok := p.index[id]
	return ok
}

// Len returns the number of entries.
func (p *Pool) Len() int { return len(p.entries) }

// Count returns the number of entries with status s.
func (p *Pool) Count(s Status) int {
	n := 0
	for _, e := range p.entries {
		if e.Status == s {
			n++
		}
	}
	return n
}

// Entries returns a copy of all entries in join order.
func (p *Pool) Entries() []Entry {
	return append([]Entry(nil), p.entries...)
}

// Queued returns the participants with status queued, in join order.
func (p *Pool) Queued() []model.Participant {
	out := make([]model.Participant, 0, len(p.entries))
	for _, e := range p.entries {
		if e.Status == StatusQueued {
			out = append(out, e.Participant)
		}
	}
	return out
}

// Take removes the given participants, e.g. after they were placed in a group.
// Unknown ids are ignored.
func (p *Pool) Take(ids []string) {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	p.remove(set)
}

// TakeVolunteers removes and returns all volunteered entries.
func (p *Pool) TakeVolunteers() []Entry {
	var out []Entry
	set := make(map[string]struct{})
	for _, e := range p.entries {
		if e.Status == StatusVolunteered {
			out = append(out, e)
			set[e.Participant.ID] = struct{}{}
		}
	}
	p.remove(set)
	return out
}

// Requeue puts participants back as queued, e.g. after a cancelled match.
// Participants already pooled keep their entry.
func (p *Pool) Requeue(participants []model.Participant, at time.Time) {
	for _, participant := range participants {
		if _, ok := p.index[participant.ID]; ok {
			continue
		}
		p.index[participant.ID] = len(p.entries)
		p.entries = append(p.entries, Entry{Participant: participant, Status: StatusQueued, JoinedAt: at})
	}
}

// Refresh replaces the stored participant data for a pooled id, keeping the
// entry's status and join time.
func (p *Pool) Refresh(participant model.Participant) {
	if i, ok := p.index[participant.ID]; ok {
		p.entries[i].Participant = participant
	}
}

func (p *Pool) remove(set map[string]struct{}) {
	if len(set) == 0 {
		return
	}
	kept := p.entries[:0]
	for _, e := range p.entries {
		if _, drop := set[e.Participant.ID]; !drop {
			kept = append(kept, e)
		}
	}
	clear(p.entries[len(kept):])
	p.entries = kept
	clear(p.index)
	for i, e := range p.entries {
		p.index[e.Participant.ID] = i
	}
}
