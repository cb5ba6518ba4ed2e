package scheduler

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/tupyy/hcam-agent/internal/models"
)

// Work is a unit of work run by one of the scheduler workers.
type Work func(ctx context.Context) (any, error)

type job struct {
	ctx    context.Context
	cancel context.CancelFunc
	work   Work
	future *models.Future[models.Result[any]]
}

// Scheduler runs work on a fixed pool of workers. Work is queued in order and
// never blocks the caller.
type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []job
	closed bool

	wg sync.WaitGroup
}

func NewScheduler(workers int) *Scheduler {
	if workers < 1 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		ctx:    ctx,
		cancel: cancel,
	}
	s.cond = sync.NewCond(&s.mu)

	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	zap.S().Named("scheduler").Debugw("scheduler started", "workers", workers)
	return s
}

// AddWork queues w and returns a future resolved with its result. Stopping the
// future cancels the context passed to w.
func (s *Scheduler) AddWork(w Work) *models.Future[models.Result[any]] {
	ctx, cancel := context.WithCancel(s.ctx)
	f := models.NewFuture[models.Result[any]](cancel)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		cancel()
		f.Resolve(models.Result[any]{Err: context.Canceled})
		return f
	}

	s.queue = append(s.queue, job{ctx: ctx, cancel: cancel, work: w, future: f})
	s.cond.Signal()
	return f
}

// Close cancels running work, resolves pending work with context.Canceled and
// waits for the workers to exit.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	pending := s.queue
	s.queue = nil
	s.cond.Broadcast()
	s.mu.Unlock()

	s.cancel()
	for _, j := range pending {
		j.cancel()
		j.future.Resolve(models.Result[any]{Err: context.Canceled})
	}
	s.wg.Wait()
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			s.mu.Unlock()
			return
		}
		j := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		s.run(id, j)
	}
}

func (s *Scheduler) run(id int, j job) {
	defer j.cancel()
	defer func() {
		if r := recover(); r != nil {
			zap.S().Named("scheduler").Errorw("work panicked", "worker", id, "panic", r)
			j.future.Resolve(models.Result[any]{Err: fmt.Errorf("work panicked: %v", r)})
		}
	}()

	if err := j.ctx.Err(); err != nil {
		j.future.Resolve(models.Result[any]{Err: err})
		return
	}

	data, err := j.work(j.ctx)
	j.future.Resolve(models.Result[any]{Data: data, Err: err})
}
