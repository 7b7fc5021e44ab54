//go:build linux

package readiness

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Epoll is the edge-count strategy: the interest set lives in the kernel and
// every Wait hands back a single ready fd.
type Epoll struct {
	epfd   int
	fds    map[int]struct{}
	events []unix.EpollEvent
}

func NewEpoll() (*Epoll, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll_create1: %w", err)
	}
	return &Epoll{
		epfd:   epfd,
		fds:    make(map[int]struct{}),
		events: make([]unix.EpollEvent, 1),
	}, nil
}

func (e *Epoll) Register(fd int) error {
	if _, ok := e.fds[fd]; ok {
		return nil
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if err := unix.EpollCtl(e.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("epoll_ctl add fd %d: %w", fd, err)
	}
	e.fds[fd] = struct{}{}
	return nil
}

func (e *Epoll) Deregister(fd int) error {
	if _, ok := e.fds[fd]; !ok {
		return nil
	}
	delete(e.fds, fd)
	if err := unix.EpollCtl(e.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return fmt.Errorf("epoll_ctl del fd %d: %w", fd, err)
	}
	return nil
}

func (e *Epoll) Wait() ([]int, error) {
	if len(e.fds) == 0 {
		return nil, ErrNoChannels
	}
	for {
		n, err := unix.EpollWait(e.epfd, e.events, -1)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("epoll_wait: %w", err)
		}
		ready := make([]int, 0, n)
		for i := 0; i < n; i++ {
			ready = append(ready, int(e.events[i].Fd))
		}
		return ready, nil
	}
}

func (e *Epoll) Len() int {
	return len(e.fds)
}

func (e *Epoll) Close() error {
	clear(e.fds)
	return unix.Close(e.epfd)
}
