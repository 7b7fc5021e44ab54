//go:build linux

package dispatcher

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

type pipeChannel struct {
	fd int
}

// NewChannel creates a pipe. The read end is non-blocking and owned by the
// returned Channel; the write end is meant to become a worker's stdout and
// must be closed by the caller once the worker is started.
// Both ends are close-on-exec so that no other worker inherits them and
// holds the channel open past its writer's exit.
func NewChannel() (Channel, *os.File, error) {
	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_CLOEXEC); err != nil {
		return nil, nil, fmt.Errorf("pipe2: %w", err)
	}
	if err := unix.SetNonblock(p[0], true); err != nil {
		_ = unix.Close(p[0])
		_ = unix.Close(p[1])
		return nil, nil, fmt.Errorf("set nonblock: %w", err)
	}
	return &pipeChannel{fd: p[0]}, os.NewFile(uintptr(p[1]), "channel"), nil
}

// openExitFd returns a pidfd for pid, or -1 when the kernel has no
// pidfd_open. A pidfd is close-on-exec and turns readable when the process
// exits.
func openExitFd(pid int) int {
	fd, err := unix.PidfdOpen(pid, 0)
	if err != nil {
		return -1
	}
	return fd
}

func closeExitFd(fd int) {
	if fd >= 0 {
		_ = unix.Close(fd)
	}
}

func (c *pipeChannel) Fd() int {
	return c.fd
}

func (c *pipeChannel) Read(p []byte) (int, error) {
	for {
		n, err := unix.Read(c.fd, p)
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			return 0, ErrWouldBlock
		case err != nil:
			return 0, err
		case n == 0:
			return 0, io.EOF
		}
		return n, nil
	}
}

func (c *pipeChannel) Close() error {
	if c.fd < 0 {
		return nil
	}
	err := unix.Close(c.fd)
	c.fd = -1
	return err
}
