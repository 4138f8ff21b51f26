package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/inhouse/internal/adapters/mq/queue"
	"github.com/okian/inhouse/internal/adapters/mq/worker"
	"github.com/okian/inhouse/internal/domain/fitness"
	"github.com/okian/inhouse/internal/domain/model"
	"github.com/okian/inhouse/internal/domain/optimizer"
	"github.com/okian/inhouse/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

type fakeOptimizer struct {
	calls atomic.Int32
	block bool
	delay time.Duration
	err   error
}

func (f *fakeOptimizer) Optimize(ctx context.Context, g model.Group, seed int64) (optimizer.Result, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.block {
		<-ctx.Done()
		return optimizer.Result{Stats: optimizer.Stats{Seed: seed, StopReason: optimizer.StopCanceled}}, ctx.Err()
	}
	return optimizer.Result{Fitness: fitness.Breakdown{Total: float64(g.Index)}, Stats: optimizer.Stats{Seed: seed}}, f.err
}

func group(index int) model.Group {
	g := model.Group{Index: index}
	for i := 0; i < model.GroupSize; i++ {
		g.Members = append(g.Members, model.Participant{
			ID:          fmt.Sprintf("g%d-p%d", index, i),
			Preferences: []model.Role{model.Role(i % model.NumRoles)},
			Prowess:     [model.NumRoles]float64{float64(i), float64(i + 1), float64(i + 2), float64(i + 3), float64(i + 4)},
		})
	}
	return g
}

func TestInMemoryWorker(t *testing.T) {
	Convey("Given a worker reading a queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		opt := &fakeOptimizer{}
		w := worker.NewInMemoryWorker(q, opt, worker.WithName("w0"))
		ctx, cancel := context.WithCancel(context.Background())
		go w.Run(ctx)
		Reset(cancel)

		Convey("When a job arrives", func() {
			reply := make(chan queue.Result, 1)
			So(q.Enqueue(ctx, queue.Job{ID: "j1", Group: group(3), Seed: 42, Reply: reply}), ShouldBeNil)

			r := <-reply
			So(r.JobID, ShouldEqual, "j1")
			So(r.Err, ShouldBeNil)
			So(r.Result.Fitness.Total, ShouldEqual, 3.0)
			So(r.Result.Stats.Seed, ShouldEqual, 42)
		})

		Convey("When the optimizer fails", func() {
			opt.err = errors.New("boom")
			reply := make(chan queue.Result, 1)
			So(q.Enqueue(ctx, queue.Job{ID: "j1", Group: group(0), Reply: reply}), ShouldBeNil)
			So((<-reply).Err, ShouldEqual, opt.err)
		})

		Convey("When the submitter gives up", func() {
			opt.block = true
			done := make(chan struct{})
			reply := make(chan queue.Result, 1)
			So(q.Enqueue(ctx, queue.Job{ID: "j1", Group: group(0), Done: done, Reply: reply}), ShouldBeNil)
			close(done)

			r := <-reply
			So(errors.Is(r.Err, context.Canceled), ShouldBeTrue)
			So(r.Result.Stats.StopReason, ShouldEqual, optimizer.StopCanceled)
		})

		Convey("When the worker is shut down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			So(w.Shutdown(sctx), ShouldBeNil)
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a pool running the real optimizer", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		opt := optimizer.New(fitness.New(), optimizer.WithBudget(optimizer.Budget{MaxEpochs: 50, Neighbors: 16}))
		p := worker.NewPool(3, q, opt)
		ctx, cancel := context.WithCancel(context.Background())
		p.Start(ctx)
		Reset(cancel)

		Convey("When several groups are optimized concurrently", func() {
			var wg sync.WaitGroup
			results := make([]optimizer.Result, 6)
			errs := make([]error, 6)
			for i := range results {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					results[i], errs[i] = p.Optimize(ctx, group(i), int64(i+1))
				}(i)
			}
			wg.Wait()

			Convey("Then every result is a valid assignment of its group", func() {
				for i, r := range results {
					So(errs[i], ShouldBeNil)
					So(r.Assignment.Validate(), ShouldBeNil)
					g := group(i)
					for _, id := range r.Assignment.Members() {
						_, ok := g.Member(id)
						So(ok, ShouldBeTrue)
					}
				}
			})

			Convey("Then the pool result matches a direct run with the same seed", func() {
				direct, err := opt.Optimize(ctx, group(2), 3)
				So(err, ShouldBeNil)
				So(results[2].Assignment, ShouldResemble, direct.Assignment)
				So(results[2].Fitness, ShouldResemble, direct.Fitness)
			})
		})

		Convey("When the pool shuts down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			So(p.Shutdown(sctx), ShouldBeNil)

			_, err := p.Optimize(ctx, group(0), 1)
			So(errors.Is(err, queue.ErrClosed), ShouldBeTrue)
		})
	})

	Convey("Given a pool whose searches never finish", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		opt := &fakeOptimizer{block: true}
		p := worker.NewPool(1, q, opt)
		ctx, cancel := context.WithCancel(context.Background())
		p.Start(ctx)
		Reset(cancel)

		Convey("When the caller's deadline passes", func() {
			cctx, ccancel := context.WithTimeout(ctx, 20*time.Millisecond)
			defer ccancel()
			_, err := p.Optimize(cctx, group(0), 1)
			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
		})
	})
	Convey("Given a pool with a job timeout", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		opt := &fakeOptimizer{block: true}
		p := worker.NewPool(1, q, opt, worker.WithJobTimeout(20*time.Millisecond))
		ctx, cancel := context.WithCancel(context.Background())
		p.Start(ctx)
		Reset(cancel)

		Convey("When a search overruns it", func() {
			res, err := p.Optimize(ctx, group(0), 7)

			Convey("Then the worker cancels it and answers", func() {
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
				So(res.Stats.StopReason, ShouldEqual, optimizer.StopCanceled)
				So(ctx.Err(), ShouldBeNil)
			})
		})
	})
	Convey("Given a busy pool with jobs waiting behind the one in hand", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		opt := &fakeOptimizer{delay: 50 * time.Millisecond}
		p := worker.NewPool(1, q, opt)
		p.Start(context.Background())

		errs := make(chan error, 3)
		for i := range 3 {
			go func() {
				_, err := p.Optimize(context.Background(), group(i), int64(i+1))
				errs <- err
			}()
		}
		for opt.calls.Load() == 0 {
			time.Sleep(time.Millisecond)
		}

		Convey("When the pool shuts down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			So(p.Shutdown(sctx), ShouldBeNil)

			Convey("Then every submitter gets an answer", func() {
				deadline := time.After(2 * time.Second)
				for range 3 {
					select {
					case err := <-errs:
						So(err == nil || errors.Is(err, queue.ErrClosed), ShouldBeTrue)
					case <-deadline:
						So("submitter still waiting", ShouldBeEmpty)
						return
					}
				}
				So(q.Len(), ShouldEqual, 0)
			})
		})
	})
}
