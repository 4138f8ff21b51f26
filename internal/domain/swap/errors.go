package swap

import "errors"

// ErrInvalidSwapTarget is returned when a swap names an id outside the
// assignment, or the same id twice.
var ErrInvalidSwapTarget = errors.New("invalid swap target")
