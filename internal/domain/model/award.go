package model

import "time"

// Award is a counter delta for one participant.
type Award struct {
	ParticipantID string
	Delta         Counters
}

// MatchRecord is the history row kept for every scored match.
type MatchRecord struct {
	MatchID     string         `json:"match_id"`
	GuildID     string         `json:"guild_id"`
	CycleID     string         `json:"cycle_id"`
	Winner      Team           `json:"winner"`
	Teams       TeamAssignment `json:"teams"`
	MVP         string         `json:"mvp,omitempty"`
	CompletedAt time.Time      `json:"completed_at"`
}

// AwardBatch is everything the ledger writes for one match. Directories
// apply it atomically.
type AwardBatch struct {
	MatchID string
	Awards  []Award
	Record  MatchRecord
}
