package partition

import "errors"

// ErrInsufficientParticipants is returned when fewer than one full group is queued.
var ErrInsufficientParticipants = errors.New("insufficient participants for a group")
