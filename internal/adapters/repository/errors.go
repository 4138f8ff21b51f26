package repository

import "errors"

// Sentinel kinds for directory errors.
var (
	ErrNotFound      = errors.New("participant not found")
	ErrInvalidLimit  = errors.New("invalid limit")
	ErrInvalidRecord = errors.New("invalid participant record")
)
