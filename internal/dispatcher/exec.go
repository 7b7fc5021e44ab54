package dispatcher

import (
	"io"
	"os/exec"
	"strconv"

	srvErrors "github.com/tupyy/expsum/pkg/errors"
)

// ExecLauncher runs the worker executable at Path as
// `Path -x <Base> -n <term>` with its stdout bound to a fresh channel.
type ExecLauncher struct {
	Path   string
	Base   int
	Stderr io.Writer
}

func NewExecLauncher(path string, base int, stderr io.Writer) *ExecLauncher {
	return &ExecLauncher{Path: path, Base: base, Stderr: stderr}
}

func (l *ExecLauncher) Launch(slot, term int) (Worker, error) {
	ch, w, err := NewChannel()
	if err != nil {
		return nil, srvErrors.NewChannelError(slot, term, err)
	}

	cmd := exec.Command(l.Path, "-x", strconv.Itoa(l.Base), "-n", strconv.Itoa(term))
	cmd.Stdout = w
	cmd.Stderr = l.Stderr

	err = cmd.Start()
	// the child holds its own copy of the write end
	_ = w.Close()
	if err != nil {
		_ = ch.Close()
		return nil, srvErrors.NewSpawnError(slot, term, err)
	}

	return &process{cmd: cmd, ch: ch, exitFd: openExitFd(cmd.Process.Pid)}, nil
}

type process struct {
	cmd    *exec.Cmd
	ch     Channel
	exitFd int
}

func (p *process) Channel() Channel {
	return p.ch
}

func (p *process) Pid() int {
	return p.cmd.Process.Pid
}

func (p *process) ExitFd() int {
	return p.exitFd
}

func (p *process) Wait() error {
	err := p.cmd.Wait()
	closeExitFd(p.exitFd)
	p.exitFd = -1
	return err
}
