package model

import "errors"

// Sentinel kinds for model validation errors.
var (
	ErrUnknownRole        = errors.New("unknown role")
	ErrUnknownTeam        = errors.New("unknown team")
	ErrInvalidPreferences = errors.New("invalid role preferences")
	ErrInvalidAssignment  = errors.New("invalid team assignment")
)

// ErrDuplicateRecord is returned by directories asked to store a second
// history record for the same match.
var ErrDuplicateRecord = errors.New("match record already exists")
