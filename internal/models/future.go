package models

import (
	"context"
	"sync"
)

// Result is the outcome of a unit of work run by the scheduler.
type Result[T any] struct {
	Data T
	Err  error
}

// Future holds a value that is resolved once by a worker.
type Future[T any] struct {
	mu       sync.Mutex
	done     chan struct{}
	value    T
	resolved bool
	cancel   context.CancelFunc
}

func NewFuture[T any](cancel context.CancelFunc) *Future[T] {
	return &Future[T]{
		done:   make(chan struct{}),
		cancel: cancel,
	}
}

// Resolve sets the value. Only the first call has an effect.
func (f *Future[T]) Resolve(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.resolved {
		return
	}
	f.value = v
	f.resolved = true
	close(f.done)
}

// Poll returns the value and true if the future is resolved.
func (f *Future[T]) Poll() (T, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.resolved
}

func (f *Future[T]) IsResolved() bool {
	_, ok := f.Poll()
	return ok
}

// Done is closed when the future is resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future is resolved or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		v, _ := f.Poll()
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Stop cancels the context of the work behind the future.
func (f *Future[T]) Stop() {
	if f.cancel != nil {
		f.cancel()
	}
}
