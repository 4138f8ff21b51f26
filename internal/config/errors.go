package config

import "errors"

// Sentinel error kinds for this package. Validation errors wrap
// ErrInvalidConfig together with the specific kind.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")

	ErrUnknownLockPolicy = errors.New("unknown lock policy")
	ErrUnknownStore      = errors.New("unknown store driver")
	ErrInvalidBudget     = errors.New("invalid optimizer budget")
)
