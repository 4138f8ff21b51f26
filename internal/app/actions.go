package service

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/okian/inhouse/internal/domain/model"
)

// Action is one command delivered to a tournament. The set is closed: only
// the types in this file implement it.
type Action interface {
	// Name is the wire name of the action.
	Name() string
	action()
}

// Join queues a participant for the next cycle.
type Join struct {
	ParticipantID string `json:"participant_id"`
}

// Leave removes a participant from the pool.
type Leave struct {
	ParticipantID string `json:"participant_id"`
}

// Volunteer marks a pooled participant as sitting the next cycle out.
type Volunteer struct {
	ParticipantID string `json:"participant_id"`
}

// StartCycle partitions the pool and proposes one match per group. A nil
// Seed uses the configured seed, or the clock when none is configured.
type StartCycle struct {
	Seed *int64 `json:"seed,omitempty"`
}

// Finalize freezes a proposed match.
type Finalize struct {
	MatchID string `json:"match_id"`
}

// Swap exchanges two participants' slots in a proposed match.
type Swap struct {
	MatchID string `json:"match_id"`
	A       string `json:"a"`
	B       string `json:"b"`
}

// EnterResult opens result entry for a match in progress.
type EnterResult struct {
	MatchID string `json:"match_id"`
}

// DeclareWinner records, or corrects, the winning team.
type DeclareWinner struct {
	MatchID string     `json:"match_id"`
	Team    model.Team `json:"team"`
}

// StartVote opens the MVP vote.
type StartVote struct {
	MatchID string `json:"match_id"`
}

// CastVote records one MVP vote. The match completes once everyone voted.
type CastVote struct {
	MatchID   string `json:"match_id"`
	Voter     string `json:"voter"`
	Candidate string `json:"candidate"`
}

// SkipVote completes a match without an MVP.
type SkipVote struct {
	MatchID string `json:"match_id"`
}

// CloseVote tallies the votes cast so far and completes the match.
type CloseVote struct {
	MatchID string `json:"match_id"`
}

// Cancel aborts a match and returns its players to the pool.
type Cancel struct {
	MatchID string `json:"match_id"`
}

// RestartCycle cancels every unfinished match of the current cycle and
// returns all of its participants to the pool.
type RestartCycle struct{}

// Toxicity adds a toxicity point to a participant.
type Toxicity struct {
	ParticipantID string `json:"participant_id"`
}

func (Join) Name() string          { return "join" }
func (Leave) Name() string         { return "leave" }
func (Volunteer) Name() string     { return "volunteer" }
func (StartCycle) Name() string    { return "start_cycle" }
func (Finalize) Name() string      { return "finalize" }
func (Swap) Name() string          { return "swap" }
func (EnterResult) Name() string   { return "enter_result" }
func (DeclareWinner) Name() string { return "declare_winner" }
func (StartVote) Name() string     { return "start_vote" }
func (CastVote) Name() string      { return "cast_vote" }
func (SkipVote) Name() string      { return "skip_vote" }
func (CloseVote) Name() string     { return "close_vote" }
func (Cancel) Name() string        { return "cancel" }
func (RestartCycle) Name() string  { return "restart_cycle" }
func (Toxicity) Name() string      { return "toxicity" }

func (Join) action()          {}
func (Leave) action()         {}
func (Volunteer) action()     {}
func (StartCycle) action()    {}
func (Finalize) action()      {}
func (Swap) action()          {}
func (EnterResult) action()   {}
func (DeclareWinner) action() {}
func (StartVote) action()     {}
func (CastVote) action()      {}
func (SkipVote) action()      {}
func (CloseVote) action()     {}
func (Cancel) action()        {}
func (RestartCycle) action()  {}
func (Toxicity) action()      {}

var decoders = map[string]func([]byte) (Action, error){
	"join":           decodeAs[Join],
	"leave":          decodeAs[Leave],
	"volunteer":      decodeAs[Volunteer],
	"start_cycle":    decodeAs[StartCycle],
	"finalize":       decodeAs[Finalize],
	"swap":           decodeAs[Swap],
	"enter_result":   decodeAs[EnterResult],
	"declare_winner": decodeAs[DeclareWinner],
	"start_vote":     decodeAs[StartVote],
	"cast_vote":      decodeAs[CastVote],
	"skip_vote":      decodeAs[SkipVote],
	"close_vote":     decodeAs[CloseVote],
	"cancel":         decodeAs[Cancel],
	"restart_cycle":  decodeAs[RestartCycle],
	"toxicity":       decodeAs[Toxicity],
}

func decodeAs[T Action](data []byte) (Action, error) {
	var a T
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAction, err)
	}
	return a, nil
}

// DecodeAction decodes {"type": "...", ...fields} into the matching Action.
func DecodeAction(data []byte) (Action, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAction, err)
	}
	decode, ok := decoders[head.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, head.Type)
	}
	return decode(data)
}

// ActionNames lists every accepted action type.
func ActionNames() []string {
	return slices.Sorted(maps.Keys(decoders))
}
