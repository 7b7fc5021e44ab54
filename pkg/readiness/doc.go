// Package readiness implements the multiplexers the dispatcher blocks on
// while its workers compute.
//
// A Multiplexer watches the read end of every live worker channel and
// returns the ones that have data or have been closed by the writer. Two
// strategies are provided:
//
//	┌──────────┬──────────────────────────────┬─────────────────────────────┐
//	│ Strategy │ Interest set                 │ Wait returns                │
//	├──────────┼──────────────────────────────┼─────────────────────────────┤
//	│ Epoll    │ persistent, kernel side      │ exactly one ready fd, no    │
//	│          │                              │ timeout                     │
//	│ Select   │ rebuilt from live fds on     │ every ready fd, or an empty │
//	│          │ every call                   │ set when the ceiling expires│
//	└──────────┴──────────────────────────────┴─────────────────────────────┘
//
// Both are level triggered: a channel that is still readable after a Wait
// is reported again, so a ready channel is never lost even when Epoll hands
// out one per call.
//
// Deregister must be called before the fd is closed. Deregistering an fd
// that is not registered is a no-op.
//
// Multiplexers are not safe for concurrent use; the dispatcher drives them
// from its single control goroutine.
package readiness
