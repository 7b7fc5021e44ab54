package dispatcher

import "errors"

// ErrWouldBlock is returned by Channel.Read when the writer is alive but has
// nothing more to say yet.
var ErrWouldBlock = errors.New("channel would block")

// Channel is the read end of the pipe a worker writes its result to.
type Channel interface {
	Fd() int
	// Read returns io.EOF once the writer closed its end and ErrWouldBlock
	// when no byte is available.
	Read(p []byte) (int, error)
	Close() error
}

// Worker is one launched worker process and its channel.
type Worker interface {
	Channel() Channel
	Pid() int
	// ExitFd returns a descriptor that becomes readable once the process
	// exited, or -1 when the worker has none and Wait may block.
	ExitFd() int
	// Wait reaps the process and releases ExitFd.
	Wait() error
}

// Launcher starts the worker computing term on slot.
type Launcher interface {
	Launch(slot, term int) (Worker, error)
}
