package scheduler

import (
	"context"
	"fmt"
	"sync"
)

type queue[T any] []T

func (q *queue[T]) Len() int { return len(*q) }

func (q *queue[T]) Pop() T {
	old := *q
	x := old[0]
	var zero T
	old[0] = zero
	*q = old[1:]
	return x
}

func (q *queue[T]) Push(t T) {
	*q = append(*q, t)
}

type request[T any] struct {
	fn  Work[T]
	out chan Result[T]
	ctx context.Context
}

type Scheduler[T any] struct {
	nbWorkers int
	idle      int
	pending   queue[request[T]]
	submit    chan request[T]
	finished  chan struct{}
	closing   chan struct{}
	stopped   chan struct{}
	mainCtx   context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	once      sync.Once

	mu    sync.Mutex
	stats Stats
}

func NewScheduler[T any](nbWorkers int) *Scheduler[T] {
	nbWorkers = max(nbWorkers, 1)
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler[T]{
		nbWorkers: nbWorkers,
		idle:      nbWorkers,
		submit:    make(chan request[T]),
		// one slot per worker so finishing workers never block on a stopped loop
		finished: make(chan struct{}, nbWorkers),
		closing:  make(chan struct{}),
		stopped:  make(chan struct{}),
		mainCtx:  ctx,
		cancel:   cancel,
		stats:    Stats{Workers: nbWorkers},
	}
	go s.run()
	return s
}

// Submit queues w and returns its future. After Close the future resolves
// to ErrClosed immediately.
func (s *Scheduler[T]) Submit(w Work[T]) *Future[T] {
	out := make(chan Result[T], 1)
	ctx, cancel := context.WithCancel(s.mainCtx)

	select {
	case <-s.mainCtx.Done():
		out <- Result[T]{Err: ErrClosed}
	case s.submit <- request[T]{fn: w, out: out, ctx: ctx}:
	}

	return newFuture(out, cancel)
}

func (s *Scheduler[T]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Close cancels every work context, fails queued work with ErrClosed and
// waits for running work to return.
func (s *Scheduler[T]) Close() {
	s.once.Do(func() {
		s.cancel()
		close(s.closing)
		<-s.stopped
	})
}

func (s *Scheduler[T]) run() {
	defer close(s.stopped)
	for {
		select {
		case r := <-s.submit:
			s.pending.Push(r)
			s.update(func(st *Stats) { st.Queued++ })
			s.dispatch()
		case <-s.finished:
			s.idle++
			s.update(func(st *Stats) {
				st.Running--
				st.Completed++
			})
			s.dispatch()
		case <-s.closing:
			for s.pending.Len() > 0 {
				r := s.pending.Pop()
				r.out <- Result[T]{Err: ErrClosed}
			}
			s.update(func(st *Stats) { st.Queued = 0 })
			s.wg.Wait()
			return
		}
	}
}

// dispatch drains the pending queue as much as idle workers allow.
func (s *Scheduler[T]) dispatch() {
	for s.idle > 0 && s.pending.Len() > 0 {
		r := s.pending.Pop()
		s.idle--
		s.update(func(st *Stats) {
			st.Queued--
			st.Running++
		})
		s.wg.Add(1)
		go s.execute(r)
	}
}

func (s *Scheduler[T]) execute(r request[T]) {
	defer func() {
		if rec := recover(); rec != nil {
			r.out <- Result[T]{Err: fmt.Errorf("work panicked: %v", rec)}
		}
		s.finished <- struct{}{}
		s.wg.Done()
	}()

	v, err := r.fn(r.ctx)
	r.out <- Result[T]{Data: v, Err: err}
}

func (s *Scheduler[T]) update(fn func(*Stats)) {
	s.mu.Lock()
	fn(&s.stats)
	s.mu.Unlock()
}
