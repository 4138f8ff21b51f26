package optimizer

import "time"

// Budget bounds one search.
type Budget struct {
	// MaxEpochs caps the number of epochs; 0 returns the initial assignment,
	// a negative value leaves the search bounded by the other limits only.
	MaxEpochs int
	// MaxDuration caps wall time; 0 disables the check.
	MaxDuration time.Duration
	// Threshold stops the search once fitness is at or below it.
	Threshold float64
	// Neighbors is the number of moves sampled per epoch; values outside
	// (0, number of moves) sweep the whole neighbourhood every epoch.
	Neighbors int
}

// DefaultBudget is used when no budget option is given.
var DefaultBudget = Budget{
	MaxEpochs:   1_000,
	MaxDuration: 250 * time.Millisecond,
	Threshold:   0,
	Neighbors:   16,
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithBudget sets the search budget.
func WithBudget(b Budget) Option {
	return func(o *Optimizer) { o.budget = b }
}

// WithClock replaces time.Now for the wall-clock bound.
func WithClock(now func() time.Time) Option {
	return func(o *Optimizer) {
		if now != nil {
			o.now = now
		}
	}
}
