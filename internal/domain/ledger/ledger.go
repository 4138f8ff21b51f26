// Package ledger is the only writer of participant counters.
//
// Every completed match is scored at most once. The match id is recorded in
// a dedupe tracker before anything is written; a failed write forgets it so
// the caller can retry.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/inhouse/internal/domain/dedupe"
	"github.com/okian/inhouse/internal/domain/lifecycle"
	"github.com/okian/inhouse/internal/domain/model"
	"github.com/okian/inhouse/pkg/logger"
	"github.com/okian/inhouse/pkg/metrics"
)

// Directory is the storage the ledger writes to.
type Directory interface {
	// ApplyAwards writes all deltas and the history record atomically.
	ApplyAwards(ctx context.Context, batch model.AwardBatch) error
	AddToxicity(ctx context.Context, id string, delta int) (model.Participant, error)
}

// Ledger applies awards.
type Ledger struct {
	dir     Directory
	scored  dedupe.Tracker
	credits dedupe.Tracker
	clock   func() time.Time
	log     logger.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithTracker replaces the scored match id tracker.
func WithTracker(t dedupe.Tracker) Option {
	return func(l *Ledger) {
		if t != nil {
			l.scored = t
		}
	}
}

// WithClock replaces time.Now for history records.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.clock = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(l *Ledger) {
		if log != nil {
			l.log = log
		}
	}
}

// New creates a Ledger writing to dir.
func New(dir Directory, opts ...Option) *Ledger {
	l := &Ledger{
		dir:     dir,
		scored:  dedupe.NewInMemoryTracker(),
		credits: dedupe.NewInMemoryTracker(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		l.log = logger.Get().Named("ledger")
	}
	return l
}

// Apply scores one outcome: a game and a participation credit for all ten
// players, a win for each winner, an MVP credit, and a participation credit
// for the cycle's volunteers on the first match scored in that cycle.
func (l *Ledger) Apply(ctx context.Context, o lifecycle.Outcome) (model.AwardBatch, error) {
	if l.scored.SeenAndRecord(ctx, o.MatchID) {
		metrics.RecordScoreDuplicate()
		return model.AwardBatch{}, fmt.Errorf("%w: %s", ErrDuplicateScoring, o.MatchID)
	}

	creditKey := o.GuildID + "/" + o.CycleID
	creditVolunteers := len(o.Volunteers) > 0 && !l.credits.SeenAndRecord(ctx, creditKey)

	batch := l.build(o, creditVolunteers)
	if err := l.dir.ApplyAwards(ctx, batch); err != nil {
		if creditVolunteers {
			l.credits.Unrecord(ctx, creditKey)
		}
		if errors.Is(err, model.ErrDuplicateRecord) {
			metrics.RecordScoreDuplicate()
			return model.AwardBatch{}, fmt.Errorf("%w: %s: %w", ErrDuplicateScoring, o.MatchID, err)
		}
		l.scored.Unrecord(ctx, o.MatchID)
		metrics.RecordError("ledger", "apply")
		l.log.Error(ctx, "apply awards failed", logger.String("match_id", o.MatchID), logger.Error(err))
		return model.AwardBatch{}, fmt.Errorf("apply awards for %s: %w", o.MatchID, err)
	}

	metrics.RecordMatchScored(len(batch.Awards))
	l.log.Info(ctx, "match scored",
		logger.String("match_id", o.MatchID),
		logger.String("winner", o.Winner.String()),
		logger.String("mvp", o.MVP),
		logger.Bool("volunteers_credited", creditVolunteers),
		logger.Int("awards", len(batch.Awards)))
	return batch, nil
}

// Scored reports whether the match id already reached the ledger.
func (l *Ledger) Scored(ctx context.Context, matchID string) bool {
	return l.scored.Seen(ctx, matchID)
}

func (l *Ledger) build(o lifecycle.Outcome, creditVolunteers bool) model.AwardBatch {
	deltas := make(map[string]model.Counters, model.GroupSize+len(o.Volunteers))
	order := make([]string, 0, model.GroupSize+len(o.Volunteers))
	add := func(id string, d model.Counters) {
		if _, ok := deltas[id]; !ok {
			order = append(order, id)
		}
		deltas[id] = deltas[id].Add(d)
	}

	for _, id := range o.Winners {
		add(id, model.Counters{Wins: 1, GamesPlayed: 1, Participation: 1})
	}
	for _, id := range o.Losers {
		add(id, model.Counters{GamesPlayed: 1, Participation: 1})
	}
	if o.MVP != "" {
		add(o.MVP, model.Counters{MVPs: 1})
	}
	if creditVolunteers {
		for _, id := range o.Volunteers {
			add(id, model.Counters{Participation: 1})
		}
	}

	batch := model.AwardBatch{
		MatchID: o.MatchID,
		Awards:  make([]model.Award, 0, len(order)),
		Record: model.MatchRecord{
			MatchID:     o.MatchID,
			GuildID:     o.GuildID,
			CycleID:     o.CycleID,
			Winner:      o.Winner,
			Teams:       o.Teams,
			MVP:         o.MVP,
			CompletedAt: l.clock(),
		},
	}
	for _, id := range order {
		batch.Awards = append(batch.Awards, model.Award{ParticipantID: id, Delta: deltas[id]})
	}
	return batch
}

// RecordToxicity adds one toxicity point to a participant.
func (l *Ledger) RecordToxicity(ctx context.Context, id string) (model.Participant, error) {
	p, err := l.dir.AddToxicity(ctx, id, 1)
	if err != nil {
		return model.Participant{}, fmt.Errorf("record toxicity for %s: %w", id, err)
	}
	metrics.RecordToxicity()
	l.log.Info(ctx, "toxicity recorded", logger.String("participant_id", id), logger.Int("toxicity", p.Counters.Toxicity))
	return p, nil
}
