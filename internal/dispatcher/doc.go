// Package dispatcher drives a fixed pool of worker processes until every
// term of a run has been computed.
//
// # Architecture Overview
//
//	┌──────────────────────────────────────────────────────────────────┐
//	│                           Dispatcher                             │
//	│                                                                  │
//	│   ┌────────┐     ┌────────┐     ┌────────┐                       │
//	│   │ Slot 0 │     │ Slot 1 │ ... │ Slot P │   one live worker     │
//	│   └───┬────┘     └───┬────┘     └───┬────┘   per slot            │
//	│       │ channel      │ channel      │ channel                    │
//	│       ▼              ▼              ▼                            │
//	│   ┌──────────────────────────────────────┐                       │
//	│   │        readiness.Multiplexer         │◄── Wait()             │
//	│   └──────────────────────────────────────┘                       │
//	│                      │ ready fds                                 │
//	│                      ▼                                           │
//	│   onReady(slot) ──► drain ──► EOF ──► reap ──► fold ──► respawn  │
//	│                                                   │              │
//	│                                                   ▼              │
//	│                                              Aggregator          │
//	└──────────────────────────────────────────────────────────────────┘
//
// # Slot Lifecycle
//
//	┌──────┐  spawn   ┌─────────┐  EOF   ┌─────────┐  exit   ┌─────────┐
//	│ Idle │ ───────► │ Running │ ─────► │ Reaping │ ──────► │ respawn │──┐
//	└──────┘          └─────────┘        └─────────┘         └────┬────┘  │
//	                       ▲                                      │       │ no term left
//	                       └──────────────────────────────────────┘       ▼
//	                                     next term                 ┌─────────┐
//	                                                               │ Retired │
//	                                                               └─────────┘
//
// A slot at EOF closes its channel and registers the exit fd of its process
// (a pidfd) with the multiplexer. It is reaped once that fd turns readable,
// so a worker that closes its output and keeps running does not hold the
// other slots. Workers without an exit fd are reaped at EOF.
//
// A spawn that fails records a SpawnError or ChannelError for its term and
// the slot moves on to the next term, so a broken worker never stalls the
// run. The exception is a multiplexer that cannot hold the fd at all
// (readiness.ErrFdOutOfRange): every later spawn would fail the same way,
// so the run is aborted with that error. A slot whose last generation failed reports SlotFailed until it is
// respawned or retired.
//
// # Result Delivery
//
// A worker writes one decimal value and exits. The dispatcher reads the
// channel in chunks of the read budget until it would block or reaches EOF.
// Only at EOF is the payload parsed and folded, after the process has been
// reaped, so the number of live workers never exceeds the pool size and a
// value larger than the read budget is never truncated.
//
// The following outcomes count the term as failed instead of folding it:
//   - EOF before any byte (EmptyResultError)
//   - a payload that is not a finite float (ParseError)
//   - a read error (ReadError)
//   - a non-zero exit status (WorkerExitError)
//
// # Termination
//
// The loop ends when completed + failed terms reach N. When the context
// passed to Run is canceled no new worker is launched; the in-flight ones
// are never preempted and Run returns once they are drained and reaped.
//
// The dispatcher is single threaded. All of its state, including the
// multiplexer, is touched only by the goroutine calling Run or Step.
package dispatcher
