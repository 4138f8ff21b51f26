// Package dedupe tracks keys that must be acted on at most once, such as the
// ids of matches that already reached the ledger.
package dedupe

import (
	"context"
	"sync"
)

// Tracker records seen keys.
type Tracker interface {
	// SeenAndRecord atomically checks whether key was seen and records it if
	// not. It returns true when key had already been recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Seen reports whether key is recorded without recording it.
	Seen(ctx context.Context, key string) bool

	// Unrecord forgets key so the guarded action can be retried. Callers use
	// it when the action failed after the key was recorded.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// inMemoryTracker keeps keys in a map. In bounded mode the oldest keys are
// evicted first, tracked by an insertion-ordered ring.
type inMemoryTracker struct {
	mu      sync.Mutex
	seen    map[string]int // key -> position in order, -1 when unbounded
	order   []string       // ring of keys, bounded mode only
	next    int
	maxSize int // 0 or negative = unbounded
}

// NewInMemoryTracker creates a tracker. It is unbounded by default.
func NewInMemoryTracker(opts ...Option) Tracker {
	t := &inMemoryTracker{}
	for _, opt := range opts {
		opt(t)
	}
	t.seen = make(map[string]int)
	if t.maxSize > 0 {
		t.order = make([]string, t.maxSize)
	}
	return t
}

func (t *inMemoryTracker) SeenAndRecord(_ context.Context, key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.seen[key]; ok {
		return true
	}
	if t.maxSize <= 0 {
		t.seen[key] = -1
		return false
	}

	// The slot at next holds the oldest key once the ring has wrapped.
	if old := t.order[t.next]; old != "" {
		delete(t.seen, old)
	}
	t.order[t.next] = key
	t.seen[key] = t.next
	t.next = (t.next + 1) % t.maxSize
	return false
}

func (t *inMemoryTracker) Seen(_ context.Context, key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.seen[key]
	return ok
}

func (t *inMemoryTracker) Unrecord(_ context.Context, key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	pos, ok := t.seen[key]
	if !ok {
		return
	}
	delete(t.seen, key)
	if pos >= 0 {
		t.order[pos] = ""
	}
}

func (t *inMemoryTracker) Size() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return int64(len(t.seen))
}
