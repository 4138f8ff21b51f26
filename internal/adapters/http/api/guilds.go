package api

import (
	"context"
	"io"
	"net/http"
	"strings"

	service "github.com/okian/inhouse/internal/app"
)

// GuildDependencies defines the tournament operations behind guild routes.
type GuildDependencies interface {
	Apply(ctx context.Context, guildID string, a service.Action) (service.Snapshot, error)
	Snapshot(ctx context.Context, guildID string) (service.Snapshot, error)
}

// GuildHandler handles tournament actions and snapshots.
type GuildHandler struct {
	deps GuildDependencies
}

// NewGuildHandler creates a new guild handler.
func NewGuildHandler(deps GuildDependencies) *GuildHandler {
	return &GuildHandler{deps: deps}
}

// HandlePostAction handles POST /v1/guilds/{guild}/actions. The body is one
// action, e.g. {"type":"join","participant_id":"..."}. The response is the
// snapshot after the action.
func (h *GuildHandler) HandlePostAction(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_action"
	guild := strings.TrimSpace(r.PathValue("guild"))
	if guild == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	action, err := service.DecodeAction(body)
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	snap, err := h.deps.Apply(r.Context(), guild, action)
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleGetGuild handles GET /v1/guilds/{guild}.
func (h *GuildHandler) HandleGetGuild(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_guild"
	snap, err := h.deps.Snapshot(r.Context(), r.PathValue("guild"))
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
