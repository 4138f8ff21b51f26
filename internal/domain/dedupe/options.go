package dedupe

// Option configures an in-memory tracker.
type Option func(*inMemoryTracker)

// WithMaxSize bounds the number of remembered keys, evicting the oldest.
// Values <= 0 keep every key.
func WithMaxSize(maxSize int) Option {
	return func(t *inMemoryTracker) {
		t.maxSize = maxSize
	}
}
