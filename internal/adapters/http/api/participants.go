package api

import (
	"context"
	"net/http"

	service "github.com/okian/inhouse/internal/app"
	"github.com/okian/inhouse/internal/domain/model"
)

// ParticipantDependencies defines the directory operations behind
// participant routes.
type ParticipantDependencies interface {
	Onboard(ctx context.Context, req service.OnboardRequest) (model.Participant, error)
	Participant(ctx context.Context, id string) (service.ParticipantView, error)
	Deactivate(ctx context.Context, id string) error
}

// ParticipantHandler handles onboarding and profile requests.
type ParticipantHandler struct {
	deps ParticipantDependencies
}

// NewParticipantHandler creates a new participant handler.
func NewParticipantHandler(deps ParticipantDependencies) *ParticipantHandler {
	return &ParticipantHandler{deps: deps}
}

// HandleOnboard handles POST /v1/participants.
func (h *ParticipantHandler) HandleOnboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.onboard"
	var req service.OnboardRequest
	if err := decodeBody(w, r, &req); err != nil {
		fail(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := h.deps.Onboard(r.Context(), req)
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleGetParticipant handles GET /v1/participants/{id}.
func (h *ParticipantHandler) HandleGetParticipant(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_participant"
	v, err := h.deps.Participant(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleDeactivate handles DELETE /v1/participants/{id}.
func (h *ParticipantHandler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	const op = "api.deactivate"
	if err := h.deps.Deactivate(r.Context(), r.PathValue("id")); err != nil {
		fail(w, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
