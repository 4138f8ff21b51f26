package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/inhouse/internal/adapters/rating"
	"github.com/okian/inhouse/internal/adapters/repository"
	service "github.com/okian/inhouse/internal/app"
	"github.com/okian/inhouse/internal/domain/ledger"
	"github.com/okian/inhouse/internal/domain/lifecycle"
	"github.com/okian/inhouse/internal/domain/model"
	"github.com/okian/inhouse/internal/domain/partition"
	"github.com/okian/inhouse/internal/domain/pool"
	"github.com/okian/inhouse/internal/domain/swap"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrLimitExceeded = errors.New("limit exceeded")
)

// Error is an operation-scoped API error. Kind is a sentinel, Err the cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == nil && e.Err == nil:
		return e.Op
	case e.Err == nil:
		return e.Op + ": " + e.Kind.Error()
	case e.Kind == nil:
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error { return &Error{Op: op, Kind: kind} }

// WrapKind attaches kind to err raised by op.
func WrapKind(op string, kind, err error) error { return &Error{Op: op, Kind: kind, Err: err} }

// Wrap scopes err to op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// statusKinds maps sentinel kinds to responses. First match wins.
var statusKinds = []struct {
	kind   error
	status int
	code   string
}{
	{ErrBadRequest, http.StatusBadRequest, "bad_request"},
	{ErrLimitExceeded, http.StatusBadRequest, "limit_exceeded"},
	{service.ErrUnknownAction, http.StatusBadRequest, "unknown_action"},
	{service.ErrInvalidAction, http.StatusBadRequest, "invalid_action"},
	{repository.ErrInvalidRecord, http.StatusBadRequest, "invalid_record"},
	{repository.ErrInvalidLimit, http.StatusBadRequest, "bad_request"},
	{model.ErrInvalidPreferences, http.StatusBadRequest, "invalid_preferences"},
	{model.ErrUnknownRole, http.StatusBadRequest, "invalid_preferences"},
	{model.ErrUnknownTeam, http.StatusBadRequest, "unknown_team"},
	{rating.ErrInvalidHandle, http.StatusBadRequest, "invalid_handle"},

	{repository.ErrNotFound, http.StatusNotFound, "not_found"},
	{service.ErrMatchNotFound, http.StatusNotFound, "match_not_found"},
	{rating.ErrHandleNotFound, http.StatusNotFound, "handle_not_found"},

	{service.ErrConcurrentModification, http.StatusConflict, "concurrent_modification"},
	{ledger.ErrDuplicateScoring, http.StatusConflict, "duplicate_scoring"},
	{lifecycle.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{service.ErrInActiveMatch, http.StatusConflict, "in_active_match"},
	{pool.ErrAlreadyQueued, http.StatusConflict, "already_queued"},
	{service.ErrCycleInProgress, http.StatusConflict, "cycle_in_progress"},
	{service.ErrCycleCancelled, http.StatusConflict, "cycle_cancelled"},

	{pool.ErrNotEligible, http.StatusUnprocessableEntity, "not_eligible"},
	{pool.ErrNotQueued, http.StatusUnprocessableEntity, "not_queued"},
	{partition.ErrInsufficientParticipants, http.StatusUnprocessableEntity, "insufficient_participants"},
	{lifecycle.ErrInvalidVote, http.StatusUnprocessableEntity, "invalid_vote"},
	{lifecycle.ErrNoWinner, http.StatusUnprocessableEntity, "no_winner"},
	{swap.ErrInvalidSwapTarget, http.StatusUnprocessableEntity, "invalid_swap_target"},

	{rating.ErrExternalServiceUnavailable, http.StatusServiceUnavailable, "rating_unavailable"},
	{rating.ErrUnauthorized, http.StatusServiceUnavailable, "rating_unavailable"},
	{context.DeadlineExceeded, http.StatusServiceUnavailable, "timeout"},
}

// classify returns the HTTP status and error code for err.
func classify(err error) (int, string) {
	for _, k := range statusKinds {
		if errors.Is(err, k.kind) {
			return k.status, k.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}
