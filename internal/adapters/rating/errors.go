package rating

import "errors"

// Sentinel kinds for rating lookups.
var (
	// ErrExternalServiceUnavailable covers transport failures, rate limiting
	// and 5xx answers. Callers may serve a cached value instead.
	ErrExternalServiceUnavailable = errors.New("rating service unavailable")
	ErrHandleNotFound             = errors.New("rating handle not found")
	ErrInvalidHandle              = errors.New("invalid rating handle")
	ErrUnauthorized               = errors.New("rating service rejected credentials")
)
