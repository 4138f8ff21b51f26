// Package lifecycle drives one match from proposal to scored completion.
//
// A Match is not safe for concurrent use. The owning tournament serializes
// every call under its instance lock.
package lifecycle

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/okian/inhouse/internal/domain/fitness"
	"github.com/okian/inhouse/internal/domain/model"
	"github.com/okian/inhouse/internal/domain/optimizer"
	"github.com/okian/inhouse/internal/domain/swap"
)

// Transition is one recorded state change.
type Transition struct {
	From State     `json:"from"`
	To   State     `json:"to"`
	At   time.Time `json:"at"`
}

// Match is one group's game. Votes maps voter id to candidate id.
type Match struct {
	ID         string               `json:"id"`
	GuildID    string               `json:"guild_id"`
	CycleID    string               `json:"cycle_id"`
	Group      model.Group          `json:"group"`
	Assignment model.TeamAssignment `json:"assignment"`
	Fitness    fitness.Breakdown    `json:"fitness"`
	Search     optimizer.Stats      `json:"search"`
	State      State                `json:"state"`
	Winner     *model.Team          `json:"winner,omitempty"`
	MVP        string               `json:"mvp,omitempty"`
	Votes      map[string]string    `json:"votes,omitempty"`
	Volunteers []string             `json:"volunteers,omitempty"`
	History    []Transition         `json:"history"`
	CreatedAt  time.Time            `json:"created_at"`

	roster       fitness.Roster
	swapper      *swap.Manager
	clock        func() time.Time
	onTransition func(from, to State)
}

// Option configures a Match.
type Option func(*Match)

// WithEvaluator scores manual swaps with eval.
func WithEvaluator(eval *fitness.Evaluator) Option {
	return func(m *Match) {
		if eval != nil {
			m.swapper = swap.New(eval)
		}
	}
}

// WithVolunteers records the participants who sat out the cycle.
func WithVolunteers(ids []string) Option {
	return func(m *Match) { m.Volunteers = slices.Clone(ids) }
}

// WithClock replaces time.Now for transition timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Match) {
		if now != nil {
			m.clock = now
		}
	}
}

// WithTransitionHook is called after every state change.
func WithTransitionHook(fn func(from, to State)) Option {
	return func(m *Match) { m.onTransition = fn }
}

// New creates a Proposed match from an optimizer result.
func New(id, guildID, cycleID string, g model.Group, res optimizer.Result, opts ...Option) *Match {
	m := &Match{
		ID:         id,
		GuildID:    guildID,
		CycleID:    cycleID,
		Group:      g,
		Assignment: res.Assignment,
		Fitness:    res.Fitness,
		Search:     res.Stats,
		State:      StateProposed,
		Votes:      make(map[string]string),
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.swapper == nil {
		m.swapper = swap.New(fitness.New())
	}
	m.roster = fitness.NewRoster(m.Group)
	m.CreatedAt = m.clock()
	return m
}

func (m *Match) transition(want []State, to State) error {
	if !slices.Contains(want, m.State) {
		return fmt.Errorf("%w: match %s is %s, cannot move to %s", ErrInvalidTransition, m.ID, m.State, to)
	}
	from := m.State
	m.State = to
	m.History = append(m.History, Transition{From: from, To: to, At: m.clock()})
	if m.onTransition != nil {
		m.onTransition(from, to)
	}
	return nil
}

// Swap exchanges two participants' slots. Only proposed matches accept swaps.
func (m *Match) Swap(a, b string) error {
	if m.State != StateProposed {
		return fmt.Errorf("%w: match %s is %s, teams are frozen", ErrInvalidTransition, m.ID, m.State)
	}
	next, score, err := m.swapper.Swap(m.roster, m.Assignment, a, b)
	if err != nil {
		return err
	}
	m.Assignment, m.Fitness = next, score
	return nil
}

// Finalize freezes the teams and starts the game.
func (m *Match) Finalize() error {
	return m.transition([]State{StateProposed}, StateInProgress)
}

// BeginResult opens result entry.
func (m *Match) BeginResult() error {
	return m.transition([]State{StateInProgress}, StateAwaitingResult)
}

// DeclareWinner records the winning team. It may be corrected until voting
// starts or is skipped.
func (m *Match) DeclareWinner(t model.Team) error {
	if m.State != StateAwaitingResult {
		return fmt.Errorf("%w: match %s is %s, cannot declare a winner", ErrInvalidTransition, m.ID, m.State)
	}
	if !t.Valid() {
		return fmt.Errorf("%w: %d", model.ErrUnknownTeam, int(t))
	}
	m.Winner = &t
	return nil
}

// StartVote opens the MVP vote.
func (m *Match) StartVote() error {
	if m.Winner == nil && m.State == StateAwaitingResult {
		return fmt.Errorf("%w: match %s", ErrNoWinner, m.ID)
	}
	return m.transition([]State{StateAwaitingResult}, StateMvpVoting)
}

// SkipVote completes the result without an MVP.
func (m *Match) SkipVote() error {
	if m.Winner == nil && m.State == StateAwaitingResult {
		return fmt.Errorf("%w: match %s", ErrNoWinner, m.ID)
	}
	return m.transition([]State{StateAwaitingResult}, StateMvpSkipped)
}

// CastVote records voter's MVP choice. Voters and candidates must play in
// the match, each voter votes once and nobody votes for themselves.
func (m *Match) CastVote(voter, candidate string) error {
	if m.State != StateMvpVoting {
		return fmt.Errorf("%w: match %s is %s, voting is closed", ErrInvalidTransition, m.ID, m.State)
	}
	switch {
	case m.roster[voter] == nil:
		return fmt.Errorf("%w: voter %q did not play", ErrInvalidVote, voter)
	case m.roster[candidate] == nil:
		return fmt.Errorf("%w: candidate %q did not play", ErrInvalidVote, candidate)
	case voter == candidate:
		return fmt.Errorf("%w: %q cannot vote for themselves", ErrInvalidVote, voter)
	}
	if _, done := m.Votes[voter]; done {
		return fmt.Errorf("%w: %q already voted", ErrInvalidVote, voter)
	}
	m.Votes[voter] = candidate
	return nil
}

// AllVoted reports whether every participant has voted.
func (m *Match) AllVoted() bool {
	return len(m.Votes) == len(m.Group.Members)
}

// Tally returns the MVP: most votes, ties to the lowest id. It reports
// false when nobody voted.
func (m *Match) Tally() (string, bool) {
	counts := make(map[string]int, len(m.Votes))
	for _, c := range m.Votes {
		counts[c]++
	}
	best, bestN := "", 0
	for _, id := range slices.Sorted(maps.Keys(counts)) {
		if counts[id] > bestN {
			best, bestN = id, counts[id]
		}
	}
	return best, bestN > 0
}

// Outcome is the scored result of a match.
type Outcome struct {
	MatchID    string
	GuildID    string
	CycleID    string
	Winner     model.Team
	Teams      model.TeamAssignment
	Winners    []string
	Losers     []string
	MVP        string
	Volunteers []string
}

// Outcome derives the result once voting is resolved. It does not change
// the match.
func (m *Match) Outcome() (Outcome, error) {
	switch m.State {
	case StateMvpVoting, StateMvpSkipped, StateCompleted:
	default:
		return Outcome{}, fmt.Errorf("%w: match %s is %s, no outcome yet", ErrInvalidTransition, m.ID, m.State)
	}
	if m.Winner == nil {
		return Outcome{}, fmt.Errorf("%w: match %s", ErrNoWinner, m.ID)
	}
	o := Outcome{
		MatchID:    m.ID,
		GuildID:    m.GuildID,
		CycleID:    m.CycleID,
		Winner:     *m.Winner,
		Teams:      m.Assignment,
		Winners:    m.Assignment.Side(*m.Winner),
		Losers:     m.Assignment.Side(m.Winner.Opponent()),
		Volunteers: slices.Clone(m.Volunteers),
	}
	switch {
	case m.State == StateCompleted:
		o.MVP = m.MVP
	case m.State == StateMvpVoting:
		o.MVP, _ = m.Tally()
	}
	return o, nil
}

// Complete closes the match. A running vote is tallied.
func (m *Match) Complete() error {
	prev := m.State
	if err := m.transition([]State{StateMvpVoting, StateMvpSkipped}, StateCompleted); err != nil {
		return err
	}
	if prev == StateMvpVoting {
		m.MVP, _ = m.Tally()
	}
	return nil
}

// Cancel aborts a match that has not finished.
func (m *Match) Cancel() error {
	return m.transition([]State{
		StateProposed, StateInProgress, StateAwaitingResult, StateMvpVoting, StateMvpSkipped,
	}, StateCancelled)
}

// Rehearse applies step to a copy of m without transition hooks and returns
// the copy. m itself is untouched, so callers can inspect the would-be
// outcome before committing to it.
func (m *Match) Rehearse(step func(*Match) error) (*Match, error) {
	c := m.Clone()
	c.onTransition = nil
	if err := step(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Clone returns a deep copy safe to hand outside the owning lock.
func (m *Match) Clone() *Match {
	c := *m
	c.Group.Members = slices.Clone(m.Group.Members)
	c.Votes = maps.Clone(m.Votes)
	c.Volunteers = slices.Clone(m.Volunteers)
	c.History = slices.Clone(m.History)
	if m.Winner != nil {
		w := *m.Winner
		c.Winner = &w
	}
	c.roster = fitness.NewRoster(c.Group)
	return &c
}
