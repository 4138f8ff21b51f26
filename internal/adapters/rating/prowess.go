package rating

import "github.com/okian/inhouse/internal/domain/model"

// Default prowess weights.
const (
	DefaultTierWeight    = 5.0
	DefaultWinRateWeight = 0.1
	DefaultRoleWeight    = 0.6
)

// ProwessModel derives per-role prowess from a participant's rating, in-house
// win rate and role preferences:
//
//	prowess(r) = (5 - tier)*TierWeight + winRate%*WinRateWeight + 5/(rank(r)+1)*RoleWeight
//
// rank(r) is the 0-based position of r in the preference list.
type ProwessModel struct {
	TierWeight    float64
	WinRateWeight float64
	RoleWeight    float64
}

// DefaultProwessModel returns the model with default weights.
func DefaultProwessModel() ProwessModel {
	return ProwessModel{
		TierWeight:    DefaultTierWeight,
		WinRateWeight: DefaultWinRateWeight,
		RoleWeight:    DefaultRoleWeight,
	}
}

// Prowess computes the per-role prowess of p.
func (m ProwessModel) Prowess(p *model.Participant) [model.NumRoles]float64 {
	base := float64(5-p.Rating.Tier)*m.TierWeight + p.Counters.WinRate()*100*m.WinRateWeight
	var out [model.NumRoles]float64
	for _, r := range model.Roles() {
		out[r] = base + 5/float64(p.PreferenceRank(r)+1)*m.RoleWeight
	}
	return out
}

// Apply recomputes p.Prowess in place.
func (m ProwessModel) Apply(p *model.Participant) {
	p.Prowess = m.Prowess(p)
}
