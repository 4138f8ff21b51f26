package optimizer

import "errors"

// ErrInvalidGroup is returned for groups that are not exactly
// model.GroupSize distinct participants.
var ErrInvalidGroup = errors.New("invalid group")
