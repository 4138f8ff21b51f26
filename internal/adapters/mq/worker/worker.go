// Package worker runs optimizer searches off the command path.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/inhouse/internal/adapters/mq/queue"
	"github.com/okian/inhouse/internal/domain/model"
	"github.com/okian/inhouse/internal/domain/optimizer"
	"github.com/okian/inhouse/pkg/logger"
	"github.com/okian/inhouse/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Optimizer searches for a balanced assignment of one group.
type Optimizer interface {
	Optimize(ctx context.Context, g model.Group, seed int64) (optimizer.Result, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes optimizer jobs.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after the job in hand.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue      Queue
	opt        Optimizer
	name       string
	jobTimeout time.Duration
	shutdown   chan struct{}
	done       chan struct{}
	logger     logger.Logger
}

// NewInMemoryWorker creates a worker reading from q.
func NewInMemoryWorker(q Queue, opt Optimizer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		opt:      opt,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, o := range opts {
		o(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	// Stopping the dequeue hands a job not yet delivered back to the queue.
	dctx, stop := context.WithCancel(ctx)
	defer stop()
	jobs := w.queue.Dequeue(dctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, j)
		}
	}
}

// Shutdown stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, j queue.Job) {
	start := time.Now()
	metrics.AddWorkerActive(1)
	defer func() {
		metrics.AddWorkerActive(-1)
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	var (
		jctx   context.Context
		cancel context.CancelFunc
	)
	if w.jobTimeout > 0 {
		jctx, cancel = context.WithTimeout(ctx, w.jobTimeout)
	} else {
		jctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()
	if j.Done != nil {
		go func() {
			select {
			case <-j.Done:
				cancel()
			case <-jctx.Done():
			}
		}()
	}

	res, err := w.opt.Optimize(jctx, j.Group, j.Seed)
	if err != nil && !errors.Is(err, context.Canceled) {
		metrics.RecordWorkerError()
		metrics.RecordError("worker", "optimize")
		w.logger.Error(ctx, "optimizer job failed",
			logger.String("job_id", j.ID),
			logger.Int("group", j.Group.Index),
			logger.Error(err))
	}
	if j.Reply == nil {
		return
	}
	select {
	case j.Reply <- queue.Result{JobID: j.ID, Result: res, Err: err}:
	default:
		w.logger.Warn(ctx, "reply channel full, dropping result", logger.String("job_id", j.ID))
	}
}

// JobQueue is the queue a Pool feeds and drains.
type JobQueue interface {
	Enqueue(ctx context.Context, j queue.Job) error
	Dequeue(ctx context.Context) <-chan queue.Job
	Close() error
	Drain() int
}

// Pool manages multiple workers and submits jobs on behalf of callers.
type Pool struct {
	workers []*InMemoryWorker
	queue   JobQueue
	logger  logger.Logger
}

// NewPool creates a worker pool. workerCount < 1 means one worker per CPU.
// opts apply to every worker.
func NewPool(workerCount int, q JobQueue, opt Optimizer, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(q, opt, append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)...)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start starts all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Optimize queues a search for g and waits for its result. When ctx ends
// first the search is cancelled and ctx's error is returned.
func (p *Pool) Optimize(ctx context.Context, g model.Group, seed int64) (optimizer.Result, error) {
	reply := make(chan queue.Result, 1)
	j := queue.Job{
		ID:    uuid.NewString(),
		Group: g,
		Seed:  seed,
		Done:  ctx.Done(),
		Reply: reply,
	}
	if err := p.queue.Enqueue(ctx, j); err != nil {
		return optimizer.Result{}, fmt.Errorf("submit optimizer job: %w", err)
	}
	select {
	case r := <-reply:
		return r.Result, r.Err
	case <-ctx.Done():
		return optimizer.Result{}, ctx.Err()
	}
}

// Shutdown closes the queue, waits for workers to finish the jobs in hand
// and answers every job still queued with queue.ErrClosed.
func (p *Pool) Shutdown(ctx context.Context) error {
	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "error closing queue", logger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var errs []error
	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			errs = append(errs, err)
		}
	}
	if n := p.queue.Drain(); n > 0 {
		p.logger.Warn(ctx, "abandoned queued optimizer jobs", logger.Int("jobs", n))
	}
	metrics.UpdateWorkerCount(0)
	return errors.Join(errs...)
}
