package simulate

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/okian/inhouse/internal/adapters/rating"
	service "github.com/okian/inhouse/internal/app"
	"github.com/okian/inhouse/internal/domain/model"
)

var ladder = []string{"IRON", "BRONZE", "SILVER", "GOLD", "PLATINUM", "EMERALD", "DIAMOND", "MASTER", "GRANDMASTER", "CHALLENGER"}

// roster is a generated participant set with the ratings the lookup serves.
type roster struct {
	requests []service.OnboardRequest
	ratings  map[string]model.Rating
}

// generate builds n participants. Ids come from rng so a seed reproduces
// the whole run.
func generate(rng *rand.Rand, n int) (roster, error) {
	r := roster{
		requests: make([]service.OnboardRequest, n),
		ratings:  make(map[string]model.Rating, n),
	}
	for i := range n {
		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			return roster{}, fmt.Errorf("participant id: %w", err)
		}
		handle := fmt.Sprintf("sim%03d#SIM", i)
		rank := ladder[rng.Intn(len(ladder))]
		games := 20 + rng.Intn(200)
		wins := rng.Intn(games + 1)
		r.ratings[handle] = model.Rating{Rank: rank, Tier: rating.TierFor(rank), Wins: wins, Losses: games - wins}

		r.requests[i] = service.OnboardRequest{
			ID:          id.String(),
			Username:    fmt.Sprintf("sim-%03d", i),
			RiotID:      handle,
			Preferences: preferences(rng),
		}
	}
	return r, nil
}

// preferences picks one to three distinct roles in random order.
func preferences(rng *rand.Rand) []model.Role {
	roles := model.Roles()
	rng.Shuffle(len(roles), func(i, j int) { roles[i], roles[j] = roles[j], roles[i] })
	return roles[:1+rng.Intn(3)]
}

// lookup serves the generated ratings.
func (r roster) lookup() rating.Lookup {
	return rating.LookupFunc(func(_ context.Context, handle string) (model.Rating, error) {
		got, ok := r.ratings[handle]
		if !ok {
			return model.Rating{}, fmt.Errorf("%w: %s", rating.ErrHandleNotFound, handle)
		}
		return got, nil
	})
}
