package api

import (
	"context"
	"net/http"

	"github.com/okian/inhouse/internal/domain/model"
	"github.com/okian/inhouse/internal/domain/types"
)

// StandingsDependencies defines the read operations behind standings and
// match history.
type StandingsDependencies interface {
	Standings(ctx context.Context, limit int) ([]types.Standing, error)
	Matches(ctx context.Context, limit int) ([]model.MatchRecord, error)
}

// StandingsHandler handles standings and match history requests.
type StandingsHandler struct {
	deps     StandingsDependencies
	maxLimit int
}

// NewStandingsHandler creates a new standings handler.
func NewStandingsHandler(deps StandingsDependencies, maxLimit int) *StandingsHandler {
	return &StandingsHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetStandings handles GET /v1/standings?limit=N requests.
func (h *StandingsHandler) HandleGetStandings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_standings"
	n, err := parseLimit(r, h.maxLimit)
	if err != nil {
		fail(w, NewKind(op, err))
		return
	}
	rows, err := h.deps.Standings(r.Context(), n)
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// HandleGetMatches handles GET /v1/matches?limit=N requests.
func (h *StandingsHandler) HandleGetMatches(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_matches"
	n, err := parseLimit(r, h.maxLimit)
	if err != nil {
		fail(w, NewKind(op, err))
		return
	}
	recs, err := h.deps.Matches(r.Context(), n)
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, recs)
}
