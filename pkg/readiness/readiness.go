package readiness

import (
	"errors"
	"time"
)

// DefaultSelectTimeout is the wait ceiling of the Select strategy.
const DefaultSelectTimeout = time.Second

// ErrNoChannels is returned by Wait when nothing is registered. Blocking in
// that state would never return.
var ErrNoChannels = errors.New("no channel registered")

// ErrFdOutOfRange is returned by Register when the strategy cannot watch the
// fd at all. It means the process holds too many descriptors for the
// strategy, so later registrations fail the same way.
var ErrFdOutOfRange = errors.New("fd out of range")

// Multiplexer blocks until at least one registered fd is readable.
type Multiplexer interface {
	Register(fd int) error
	Deregister(fd int) error
	// Wait returns the ready fds. An empty result without error means the
	// wait ceiling expired and the caller should wait again.
	Wait() ([]int, error)
	// Len returns the number of registered fds.
	Len() int
	Close() error
}

type options struct {
	selectTimeout time.Duration
}

type Option func(*options)

// WithSelectTimeout sets the wait ceiling of the Select strategy.
// Non-positive values keep the default.
func WithSelectTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.selectTimeout = d
		}
	}
}

func newOptions(opts ...Option) options {
	o := options{selectTimeout: DefaultSelectTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
