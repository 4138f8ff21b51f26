package service

import (
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/okian/inhouse/pkg/metrics"
)

// Registry maps guild ids to tournaments. Tournaments share no mutable
// state, so the registry is the only structure touched across guilds.
type Registry struct {
	policy      string
	tournaments *xsync.Map[string, *Tournament]
}

// NewRegistry creates an empty registry whose tournaments use policy.
func NewRegistry(policy string) *Registry {
	return &Registry{
		policy:      policy,
		tournaments: xsync.NewMap[string, *Tournament](),
	}
}

// Get returns the tournament of guildID, creating it on first use.
func (r *Registry) Get(guildID string) *Tournament {
	if t, ok := r.tournaments.Load(guildID); ok {
		return t
	}
	t, loaded := r.tournaments.LoadOrStore(guildID, newTournament(guildID, r.policy))
	if !loaded {
		metrics.UpdateGuilds(r.tournaments.Size())
	}
	return t
}

// Lookup returns the tournament of guildID if it exists.
func (r *Registry) Lookup(guildID string) (*Tournament, bool) {
	return r.tournaments.Load(guildID)
}

// Len returns the number of tournaments.
func (r *Registry) Len() int { return r.tournaments.Size() }
