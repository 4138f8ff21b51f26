package ledger

import "errors"

// ErrDuplicateScoring is returned when a match reaches the ledger twice.
var ErrDuplicateScoring = errors.New("match already scored")
