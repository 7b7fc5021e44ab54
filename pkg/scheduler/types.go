package scheduler

import (
	"context"
	"errors"
)

// ErrClosed is the result of work submitted to, or still queued in, a closed
// scheduler.
var ErrClosed = errors.New("scheduler closed")

type Work[T any] func(ctx context.Context) (T, error)

type Result[T any] struct {
	Data T
	Err  error
}

// Stats is a snapshot of the scheduler counters.
type Stats struct {
	Workers   int
	Queued    int
	Running   int
	Completed int
}

// Future receives exactly one Result.
type Future[T any] struct {
	c      chan Result[T]
	cancel context.CancelFunc
}

func newFuture[T any](c chan Result[T], cancel context.CancelFunc) *Future[T] {
	return &Future[T]{c: c, cancel: cancel}
}

func (f *Future[T]) C() <-chan Result[T] {
	return f.c
}

// Wait blocks until the result arrives or ctx is done. It consumes the
// result; C yields nothing afterwards.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case r := <-f.c:
		return r.Data, r.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Stop cancels the context handed to the work.
func (f *Future[T]) Stop() {
	f.cancel()
}
