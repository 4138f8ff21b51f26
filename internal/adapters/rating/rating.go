// Package rating resolves external skill ratings and turns them into
// per-role prowess.
package rating

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/inhouse/internal/domain/model"
)

// Unranked is reported when the handle has no ranked solo queue entry.
const Unranked = "UNRANKED"

// UnrankedTier is the tier given to unranked and unknown ranks.
const UnrankedTier = 7

var tiers = map[string]int{
	"IRON":        7,
	"BRONZE":      6,
	"SILVER":      6,
	"GOLD":        5,
	"PLATINUM":    4,
	"EMERALD":     3,
	"DIAMOND":     3,
	"MASTER":      2,
	"GRANDMASTER": 1,
	"CHALLENGER":  1,
}

// TierFor maps a ranked division name to a tier; lower is stronger.
func TierFor(rank string) int {
	if t, ok := tiers[strings.ToUpper(rank)]; ok {
		return t
	}
	return UnrankedTier
}

// Default is the rating assumed when nothing is known about a handle.
func Default() model.Rating {
	return model.Rating{Rank: Unranked, Tier: UnrankedTier}
}

// Lookup resolves a rating handle (name#tag).
type Lookup interface {
	Lookup(ctx context.Context, handle string) (model.Rating, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, handle string) (model.Rating, error)

func (f LookupFunc) Lookup(ctx context.Context, handle string) (model.Rating, error) {
	return f(ctx, handle)
}

// SplitHandle splits "name#tag" into its parts.
func SplitHandle(handle string) (name, tag string, err error) {
	name, tag, ok := strings.Cut(strings.TrimSpace(handle), "#")
	if !ok || name == "" || tag == "" || strings.Contains(tag, "#") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidHandle, handle)
	}
	return name, tag, nil
}
