// Package queue carries optimizer jobs from the coordinator to the worker
// pool.
package queue

import (
	"context"
	"sync"

	"github.com/okian/inhouse/internal/domain/model"
	"github.com/okian/inhouse/internal/domain/optimizer"
	"github.com/okian/inhouse/pkg/metrics"
)

const defaultQueueCapacity = 1_024

// Job asks for one optimizer search over a group.
//
// Reply must have room for one Result; the worker never blocks on it. Done
// is closed when the submitter stops waiting, which cancels the search.
type Job struct {
	ID    string
	Group model.Group
	Seed  int64
	Done  <-chan struct{}
	Reply chan<- Result
}

// Result is the worker's answer to a Job.
type Result struct {
	JobID  string
	Result optimizer.Result
	Err    error
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job. It fails with ErrFull or ErrClosed instead of
	// blocking.
	Enqueue(ctx context.Context, j Job) error

	// Dequeue returns a channel that receives jobs as they become available.
	// The channel is closed when the queue is closed or ctx ends.
	Dequeue(ctx context.Context) <-chan Job

	Len() int
	Close() error
	IsClosed() bool

	// Drain abandons the jobs left after Close.
	Drain() int
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int

	mu     sync.RWMutex
	closed bool
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a new in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a job to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordError("queue", "closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordError("queue", "context_cancelled")
		return err
	}

	select {
	case q.jobs <- j:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.jobs))
		return nil
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordError("queue", "queue_full")
		return ErrFull
	}
}

// Dequeue returns a channel that receives jobs as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Job {
	out := make(chan Job)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case j, ok := <-q.jobs:
				if !ok {
					return
				}
				select {
				case out <- j:
					metrics.RecordQueueDequeue()
					metrics.UpdateQueueSize(len(q.jobs))
				case <-ctx.Done():
					// Hand the job back so another consumer can take it.
					q.requeue(j)
					return
				}
			}
		}
	}()
	return out
}

func (q *InMemoryQueue) requeue(j Job) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.abandon(j)
		return
	}
	select {
	case q.jobs <- j:
	default:
		q.abandon(j)
	}
}

// abandon answers a job nobody will run.
func (q *InMemoryQueue) abandon(j Job) {
	if j.Reply == nil {
		return
	}
	select {
	case j.Reply <- Result{JobID: j.ID, Err: ErrClosed}:
	default:
	}
}

// Len returns the current number of queued jobs.
func (q *InMemoryQueue) Len() int {
	n := len(q.jobs)
	metrics.UpdateQueueSize(n)
	return n
}

// Close stops accepting jobs. Queued jobs are still delivered.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// Drain answers every job still queued after Close with ErrClosed and
// returns how many it abandoned. It is a no-op on an open queue.
func (q *InMemoryQueue) Drain() int {
	if !q.IsClosed() {
		return 0
	}
	n := 0
	for j := range q.jobs {
		q.abandon(j)
		n++
	}
	metrics.UpdateQueueSize(0)
	return n
}

// IsClosed reports whether Close was called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
