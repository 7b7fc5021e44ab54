//go:build linux

package readiness

import (
	"errors"
	"fmt"
	"slices"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// fdSetSize is the first fd that does not fit in an fd_set.
const fdSetSize = int(unsafe.Sizeof(unix.FdSet{})) * 8

// Select is the bounded-set strategy: the watched set is rebuilt from the
// registered fds on every call and all ready fds are returned together.
type Select struct {
	fds     []int
	timeout time.Duration
}

func NewSelect(timeout time.Duration) *Select {
	if timeout <= 0 {
		timeout = DefaultSelectTimeout
	}
	return &Select{timeout: timeout}
}

func (s *Select) Register(fd int) error {
	if fd < 0 || fd >= fdSetSize {
		return fmt.Errorf("fd %d does not fit in an fd_set of %d: %w", fd, fdSetSize, ErrFdOutOfRange)
	}
	if slices.Contains(s.fds, fd) {
		return nil
	}
	s.fds = append(s.fds, fd)
	return nil
}

func (s *Select) Deregister(fd int) error {
	s.fds = slices.DeleteFunc(s.fds, func(v int) bool { return v == fd })
	return nil
}

func (s *Select) Wait() ([]int, error) {
	if len(s.fds) == 0 {
		return nil, ErrNoChannels
	}

	var set unix.FdSet
	set.Zero()
	maxFd := -1
	for _, fd := range s.fds {
		set.Set(fd)
		maxFd = max(maxFd, fd)
	}

	tv := unix.NsecToTimeval(s.timeout.Nanoseconds())
	n, err := unix.Select(maxFd+1, &set, nil, nil, &tv)
	if errors.Is(err, unix.EINTR) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	ready := make([]int, 0, n)
	for _, fd := range s.fds {
		if set.IsSet(fd) {
			ready = append(ready, fd)
		}
	}
	return ready, nil
}

func (s *Select) Len() int {
	return len(s.fds)
}

func (s *Select) Close() error {
	s.fds = nil
	return nil
}
