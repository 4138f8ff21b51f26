package service

import "errors"

// Sentinel kinds for coordinator errors.
var (
	ErrConcurrentModification = errors.New("tournament is busy with another action")
	ErrMatchNotFound          = errors.New("match not found")
	ErrInActiveMatch          = errors.New("participant is in an active match")
	ErrCycleInProgress        = errors.New("a cycle is already being formed")
	ErrCycleCancelled         = errors.New("cycle was restarted while forming")
	ErrUnknownAction          = errors.New("unknown action")
	ErrInvalidAction          = errors.New("invalid action")
)
