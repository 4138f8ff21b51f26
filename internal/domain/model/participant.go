package model

import "time"

// Counters are the cumulative statistics of a participant. Only the scoring
// ledger produces deltas for them.
type Counters struct {
	Wins          int `json:"wins"`
	MVPs          int `json:"mvps"`
	Participation int `json:"participation"`
	GamesPlayed   int `json:"games_played"`
	Toxicity      int `json:"toxicity"`
}

// Add returns the element-wise sum of c and d.
func (c Counters) Add(d Counters) Counters {
	return Counters{
		Wins:          c.Wins + d.Wins,
		MVPs:          c.MVPs + d.MVPs,
		Participation: c.Participation + d.Participation,
		GamesPlayed:   c.GamesPlayed + d.GamesPlayed,
		Toxicity:      c.Toxicity + d.Toxicity,
	}
}

// IsZero reports whether no counter is set.
func (c Counters) IsZero() bool { return c == Counters{} }

// TotalPoints is participation + wins + MVPs - toxicity.
func (c Counters) TotalPoints() int {
	return c.Participation + c.Wins + c.MVPs - c.Toxicity
}

// WinRate returns wins/games in [0,1]; zero when no games were played.
func (c Counters) WinRate() float64 {
	if c.GamesPlayed == 0 {
		return 0
	}
	return float64(c.Wins) / float64(c.GamesPlayed)
}

// Participant is a community member known to the directory.
type Participant struct {
	ID          string            `json:"id"`
	Username    string            `json:"username"`
	RiotID      string            `json:"riot_id,omitempty"`
	Rating      Rating            `json:"rating"`
	Preferences []Role            `json:"preferences"`
	Prowess     [NumRoles]float64 `json:"prowess"`
	Counters    Counters          `json:"counters"`
	Active      bool              `json:"active"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Eligible reports whether onboarding is complete: the participant is
// active, has a linked rating handle and a valid, non-empty preference list.
func (p *Participant) Eligible() bool {
	return p.Active && p.RiotID != "" && len(p.Preferences) > 0 && ValidatePreferences(p.Preferences) == nil
}

// PreferenceRank returns the 0-based position of r in the preference list.
// Roles missing from a non-empty list rank after every listed role; an
// empty list ranks every role 0.
func (p *Participant) PreferenceRank(r Role) int {
	for i, pr := range p.Preferences {
		if pr == r {
			return i
		}
	}
	return len(p.Preferences)
}

// Aggregate is the skill measure used to order participants before
// partitioning: mean prowess across listed preferred roles, or across all
// roles when none are listed.
func (p *Participant) Aggregate() float64 {
	if len(p.Preferences) == 0 {
		var sum float64
		for _, v := range p.Prowess {
			sum += v
		}
		return sum / NumRoles
	}
	var sum float64
	for _, r := range p.Preferences {
		sum += p.Prowess[r]
	}
	return sum / float64(len(p.Preferences))
}

// Rating is the external skill rating of a participant. Stale is set when
// the value was served from cache after a failed lookup.
type Rating struct {
	Rank   string `json:"rank"`
	Tier   int    `json:"tier"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Stale  bool   `json:"stale,omitempty"`
}

// WinRate returns ranked wins/(wins+losses) in [0,1].
func (r Rating) WinRate() float64 {
	games := r.Wins + r.Losses
	if games == 0 {
		return 0
	}
	return float64(r.Wins) / float64(games)
}
