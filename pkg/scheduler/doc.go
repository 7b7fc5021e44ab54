// Package scheduler runs asynchronous work on a fixed pool of goroutines and
// hands back typed futures.
//
// expsum uses it in server mode to bound how many dispatcher runs execute at
// once; each run owns its own worker processes, so the pool size multiplies
// the process count.
//
// # Architecture Overview
//
//	   Submit(fn) ──► submit chan ──┐
//	                                ▼
//	┌──────────────────────── run() ─────────────────────────┐
//	│  pending: [req] [req] [req] ...         idle: k of N   │
//	│                     │                                  │
//	│                dispatch()                              │
//	│                     │  while idle > 0 && pending > 0   │
//	│                     ▼                                  │
//	│         go execute(req) ── result ──► Future[T]        │
//	│                     │                                  │
//	│                     └── finished chan ──► idle++       │
//	└────────────────────────────────────────────────────────┘
//
// run() is the only goroutine that touches the pending queue and the idle
// counter. It reacts to three events:
//
//	select {
//	case r := <-s.submit:   // queue, then dispatch
//	case <-s.finished:      // a goroutine is idle again, dispatch
//	case <-s.closing:       // fail pending work, wait for running work
//	}
//
// # Futures
//
// A Future receives exactly one Result on a buffered channel, so work never
// blocks on a caller that stopped listening:
//
//	f := sched.Submit(func(ctx context.Context) (models.Run, error) {
//	    return runner.Run(ctx, id, params)
//	})
//	run, err := f.Wait(ctx)
//
// Stop cancels the context passed to the work function. Panics inside work
// are recovered and delivered as an error result.
//
// # Shutdown
//
// Close cancels the context of every request, resolves still-queued futures
// with ErrClosed and returns once running work has returned. Submit after
// Close resolves immediately with ErrClosed. Close is idempotent.
package scheduler
