// Package repository stores participants, their counters and match history.
package repository

import (
	"context"

	"github.com/okian/inhouse/internal/domain/model"
	"github.com/okian/inhouse/internal/domain/types"
)

// Directory is the participant directory.
//
// Upsert writes profile fields only. Counters change through ApplyAwards and
// AddToxicity, which the scoring ledger owns.
type Directory interface {
	// Get returns ErrNotFound for unknown ids.
	Get(ctx context.Context, id string) (model.Participant, error)
	// Upsert creates or updates a participant and returns the stored record.
	Upsert(ctx context.Context, p model.Participant) (model.Participant, error)
	// List returns all participants ordered by id.
	List(ctx context.Context) ([]model.Participant, error)
	// Deactivate clears the active flag. Participants are never deleted.
	Deactivate(ctx context.Context, id string) error

	// ApplyAwards adds every delta and stores the match record in one step.
	// Nothing is written when any participant is unknown, and a second batch
	// for the same match fails with model.ErrDuplicateRecord.
	ApplyAwards(ctx context.Context, batch model.AwardBatch) error
	// AddToxicity adds delta toxicity points and returns the updated record.
	AddToxicity(ctx context.Context, id string, delta int) (model.Participant, error)

	// Matches returns the most recent match records, newest first.
	Matches(ctx context.Context, limit int) ([]model.MatchRecord, error)
	// ParticipantMatches returns the most recent records a participant played in.
	ParticipantMatches(ctx context.Context, id string, limit int) ([]model.MatchRecord, error)
	// Standings returns the points table, highest first.
	Standings(ctx context.Context, limit int) ([]types.Standing, error)

	// Count returns the number of participants.
	Count(ctx context.Context) int
	Close() error
}
