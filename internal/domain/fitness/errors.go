package fitness

import "errors"

// ErrUnknownParticipant is returned when an assignment names an id the roster lacks.
var ErrUnknownParticipant = errors.New("participant not in roster")
