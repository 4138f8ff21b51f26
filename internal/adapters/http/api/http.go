// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
)

const (
	defaultMaxLimit = 100
	maxBodyBytes    = 1 << 20
)

// Dependencies required by HTTP handlers. Each handler only sees the
// subset it uses.
type Dependencies interface {
	GuildDependencies
	ParticipantDependencies
	StandingsDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	opsHandler         *OpsHandler
	guildHandler       *GuildHandler
	participantHandler *ParticipantHandler
	standingsHandler   *StandingsHandler
}

// NewServer creates a new API server with all handlers. maxLimit caps the
// limit query parameter of list endpoints; values below 1 select the
// default.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	if maxLimit < 1 {
		maxLimit = defaultMaxLimit
	}
	return &Server{
		opsHandler:         NewOpsHandler(statsProvider),
		guildHandler:       NewGuildHandler(deps),
		participantHandler: NewParticipantHandler(deps),
		standingsHandler:   NewStandingsHandler(deps, maxLimit),
	}
}

// Register attaches all HTTP routes to mux. Every route is instrumented.
func (s *Server) Register(mux *http.ServeMux) {
	routes := []struct {
		pattern  string
		endpoint string
		handler  http.HandlerFunc
	}{
		{"GET /healthz", "healthz", s.opsHandler.HandleHealth},
		{"GET /stats", "stats", s.opsHandler.HandleStats},

		{"POST /v1/guilds/{guild}/actions", "guild_actions", s.guildHandler.HandlePostAction},
		{"GET /v1/guilds/{guild}", "guild", s.guildHandler.HandleGetGuild},

		{"POST /v1/participants", "participants", s.participantHandler.HandleOnboard},
		{"GET /v1/participants/{id}", "participant", s.participantHandler.HandleGetParticipant},
		{"DELETE /v1/participants/{id}", "participant", s.participantHandler.HandleDeactivate},

		{"GET /v1/standings", "standings", s.standingsHandler.HandleGetStandings},
		{"GET /v1/matches", "matches", s.standingsHandler.HandleGetMatches},
	}
	for _, rt := range routes {
		mux.HandleFunc(rt.pattern, Instrument(rt.endpoint, rt.handler))
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	noteErrorCode(w, code)
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail classifies err and writes the matching error response.
func fail(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

// decodeBody reads one JSON document from r into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// parseLimit reads ?limit. A missing value returns 0 so the service picks
// its default.
func parseLimit(r *http.Request, maxLimit int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, ErrBadRequest
	}
	if n > maxLimit {
		return 0, ErrLimitExceeded
	}
	return n, nil
}
