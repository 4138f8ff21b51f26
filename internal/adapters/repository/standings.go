package repository

import (
	"sort"

	"github.com/okian/inhouse/internal/domain/model"
	"github.com/okian/inhouse/internal/domain/types"
)

func toStanding(p model.Participant) types.Standing {
	return types.Standing{
		ParticipantID: p.ID,
		Username:      p.Username,
		Points:        p.Counters.TotalPoints(),
		Wins:          p.Counters.Wins,
		MVPs:          p.Counters.MVPs,
		GamesPlayed:   p.Counters.GamesPlayed,
	}
}

// sortStandings orders by points (descending) and participant id (ascending).
func sortStandings(entries []types.Standing) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].ParticipantID < entries[j].ParticipantID
	})
}

// assignRanksWithTies gives equal points the same rank; the next distinct
// score takes the following rank (1, 1, 2).
func assignRanksWithTies(entries []types.Standing) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Points != entries[i-1].Points {
			rank++
		}
		entries[i].Rank = rank
	}
}

func validateLimit(limit int) error {
	if limit < 1 {
		return ErrInvalidLimit
	}
	return nil
}

func validateParticipant(p model.Participant) error {
	if p.ID == "" {
		return ErrInvalidRecord
	}
	return model.ValidatePreferences(p.Preferences)
}
