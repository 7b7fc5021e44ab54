package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/tupyy/expsum/internal/models"
	srvErrors "github.com/tupyy/expsum/pkg/errors"
	"github.com/tupyy/expsum/pkg/readiness"
	"github.com/tupyy/expsum/pkg/series"
)

const (
	// DefaultReadBudget is the number of bytes read per read call.
	DefaultReadBudget = 10
	// MaxPayload bounds the bytes accepted from one worker.
	MaxPayload = 64
)

// ErrStalled is returned when no worker is live but terms are unsettled.
var ErrStalled = errors.New("dispatcher stalled: no live worker and unsettled terms")

type State int

const (
	StateIdle State = iota
	StateRunning
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type Option func(*Dispatcher)

// WithReadBudget sets the size of a single read. Non-positive values keep
// DefaultReadBudget.
func WithReadBudget(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.readBudget = n
		}
	}
}

// WithTermSource replaces the default Counter.
func WithTermSource(src TermSource) Option {
	return func(d *Dispatcher) {
		d.terms = src
	}
}

// WithObserver registers fn to be called with every settled term, in
// readiness order, on the dispatcher goroutine.
func WithObserver(fn func(models.TermResult)) Option {
	return func(d *Dispatcher) {
		d.observer = fn
	}
}

// Dispatcher owns every slot, the multiplexer registrations and the
// aggregate state of one run.
type Dispatcher struct {
	params     models.RunParams
	mux        readiness.Multiplexer
	launcher   Launcher
	terms      TermSource
	readBudget int
	observer   func(models.TermResult)

	state    State
	slots    []*Slot
	byFd     map[int]*Slot
	agg      *Aggregator
	chunk    []byte
	results  []models.TermResult
	errs     []error
	stats    models.RunStats
	live     int
	stopping bool
}

func New(params models.RunParams, mux readiness.Multiplexer, launcher Launcher, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		params:     params,
		mux:        mux,
		launcher:   launcher,
		readBudget: DefaultReadBudget,
		byFd:       make(map[int]*Slot),
		agg:        NewAggregator(max(params.Terms, 0)),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.terms == nil {
		d.terms = NewCounter(params.Terms)
	}
	d.chunk = make([]byte, d.readBudget)
	return d
}

func (d *Dispatcher) State() State {
	return d.state
}

// Live returns the number of spawned and not yet reaped workers.
func (d *Dispatcher) Live() int {
	return d.live
}

func (d *Dispatcher) Slots() []models.SlotStatus {
	out := make([]models.SlotStatus, 0, len(d.slots))
	for _, s := range d.slots {
		out = append(out, s.Status())
	}
	return out
}

// Run spawns the pool and loops until every term is settled or ctx is
// canceled and the in-flight workers are drained.
func (d *Dispatcher) Run(ctx context.Context) (models.RunResult, error) {
	if err := d.Start(); err != nil {
		d.abort()
		return d.Result(), err
	}

	for d.state != StateDone {
		if ctx.Err() != nil && !d.stopping {
			zap.S().Named("dispatcher").Infow("run canceled, draining in-flight workers", "live", d.live)
			d.stopping = true
		}
		if d.live == 0 {
			if d.stopping {
				break
			}
			d.abort()
			return d.Result(), ErrStalled
		}
		if err := d.Step(); err != nil {
			d.abort()
			return d.Result(), err
		}
	}

	return d.Result(), d.err(ctx)
}

// Start sizes the pool and spawns the first generation. With zero terms it
// goes straight to done without spawning.
func (d *Dispatcher) Start() error {
	if d.state != StateIdle {
		return nil
	}
	if d.params.Workers < 1 {
		return srvErrors.NewConfigurationError("num_workers", "must be at least 1")
	}

	d.state = StateRunning
	if d.agg.Target() == 0 {
		d.state = StateDone
		return nil
	}

	pool := min(d.agg.Target(), d.params.Workers)
	d.slots = make([]*Slot, 0, pool)
	for i := range pool {
		s := newSlot(i)
		d.slots = append(d.slots, s)
		if err := d.spawnNext(s); err != nil {
			return err
		}
	}

	zap.S().Named("dispatcher").Debugw("pool started", "slots", pool, "terms", d.agg.Target(), "live", d.live)
	d.checkDone()
	return nil
}

// Step performs one wait on the multiplexer and services every fd it
// returns before returning. A ready fd is either the channel of a running
// slot or the exit fd of a reaping one.
func (d *Dispatcher) Step() error {
	if d.state != StateRunning {
		return nil
	}

	ready, err := d.mux.Wait()
	d.stats.Iterations++
	if err != nil {
		return fmt.Errorf("waiting for worker results: %w", err)
	}
	if len(ready) == 0 {
		zap.S().Named("dispatcher").Debugw("wait ceiling expired", "live", d.live)
		return nil
	}

	for _, fd := range ready {
		slot, ok := d.byFd[fd]
		if !ok {
			// stale readiness for a channel already torn down
			_ = d.mux.Deregister(fd)
			continue
		}
		if err := d.onReady(slot); err != nil {
			return err
		}
	}

	d.checkDone()
	return nil
}

// Result returns the aggregate state. It is final once State is done.
func (d *Dispatcher) Result() models.RunResult {
	total := d.agg.Total()
	if d.agg.Target() == 0 {
		total = series.Identity
	}
	return models.RunResult{
		Total:     total,
		Completed: d.agg.Completed(),
		Failed:    d.agg.Failed(),
		Target:    d.agg.Target(),
		Terms:     d.results,
		Stats:     d.stats,
	}
}

// spawnNext launches the next term on s, moving past terms that cannot be
// spawned. It only fails when the multiplexer can no longer accept fds.
func (d *Dispatcher) spawnNext(s *Slot) error {
	for {
		if d.stopping {
			d.retire(s)
			return nil
		}
		term, ok := d.terms.Next()
		if !ok {
			d.retire(s)
			return nil
		}
		err := d.spawn(s, term)
		if err == nil {
			return nil
		}
		zap.S().Named("dispatcher").Errorw("failed to spawn worker", "slot", s.index, "term", term, "error", err)
		s.markFailed(term, err)
		d.settle(s, term, 0, err)
		if errors.Is(err, readiness.ErrFdOutOfRange) {
			d.retire(s)
			return err
		}
	}
}

func (d *Dispatcher) spawn(s *Slot, term int) error {
	w, err := d.launcher.Launch(s.index, term)
	if err != nil {
		return err
	}

	fd := w.Channel().Fd()
	if err := d.mux.Register(fd); err != nil {
		_ = w.Channel().Close()
		_ = w.Wait()
		return srvErrors.NewChannelError(s.index, term, err)
	}

	s.attach(term, w)
	d.byFd[fd] = s
	d.live++
	d.stats.Spawned++
	d.stats.MaxLive = max(d.stats.MaxLive, d.live)

	zap.S().Named("dispatcher").Debugw("worker spawned", "slot", s.index, "term", term, "pid", w.Pid(), "fd", fd)
	return nil
}

func (d *Dispatcher) retire(s *Slot) {
	if s.state == models.SlotRetired {
		return
	}
	s.retire()
	zap.S().Named("dispatcher").Debugw("slot retired", "slot", s.index, "generations", s.generations)
}

// onReady drains the slot's channel, or reaps its process when the slot
// already saw EOF.
func (d *Dispatcher) onReady(s *Slot) error {
	if s.state == models.SlotReaping {
		return d.reap(s)
	}

	ch := s.worker.Channel()
	for {
		n, err := ch.Read(d.chunk)
		if n > 0 {
			s.buf = append(s.buf, d.chunk[:n]...)
			if len(s.buf) > MaxPayload {
				return d.onDelivered(s, srvErrors.NewParseError(s.index, s.term, string(s.buf[:MaxPayload]),
					fmt.Errorf("payload exceeds %d bytes", MaxPayload)))
			}
		}
		switch {
		case err == nil:
			continue
		case errors.Is(err, ErrWouldBlock):
			return nil
		case errors.Is(err, io.EOF):
			return d.onDelivered(s, nil)
		default:
			return d.onDelivered(s, srvErrors.NewReadError(s.index, s.term, err))
		}
	}
}

// onDelivered closes the channel of a generation that is done writing. The
// process is reaped right away when it offers no exit fd, otherwise once its
// exit fd turns readable. The slot stays live until then.
func (d *Dispatcher) onDelivered(s *Slot, readErr error) error {
	ch := s.worker.Channel()
	fd := ch.Fd()
	_ = d.mux.Deregister(fd)
	delete(d.byFd, fd)
	_ = ch.Close()
	s.readErr = readErr

	exitFd := s.worker.ExitFd()
	if exitFd < 0 {
		return d.reap(s)
	}
	if err := d.mux.Register(exitFd); err != nil {
		zap.S().Named("dispatcher").Debugw("cannot watch worker exit, reaping in place",
			"slot", s.index, "term", s.term, "error", err)
		return d.reap(s)
	}
	s.state = models.SlotReaping
	d.byFd[exitFd] = s
	return nil
}

// reap collects the process, settles its term and decides between respawn
// and retirement.
func (d *Dispatcher) reap(s *Slot) error {
	if exitFd := s.worker.ExitFd(); exitFd >= 0 && d.byFd[exitFd] == s {
		_ = d.mux.Deregister(exitFd)
		delete(d.byFd, exitFd)
	}

	waitErr := s.worker.Wait()
	d.live--
	s.detach()
	readErr := s.readErr
	s.readErr = nil

	term := s.term
	value, err := 0.0, readErr
	if err == nil {
		value, err = parseResult(s.index, term, s.buf)
	}
	if err == nil && waitErr != nil {
		err = srvErrors.NewWorkerExitError(s.index, term, waitErr)
	}

	if err != nil {
		zap.S().Named("dispatcher").Errorw("term failed", "slot", s.index, "term", term, "error", err)
		s.markFailed(term, err)
	}
	d.settle(s, term, value, err)

	if d.agg.Settled() {
		d.retire(s)
		return nil
	}
	return d.spawnNext(s)
}

func (d *Dispatcher) settle(s *Slot, term int, value float64, err error) {
	r := models.TermResult{Term: term, Slot: s.index, Value: value, Err: err}
	if err != nil {
		d.agg.Fail()
		d.errs = append(d.errs, err)
	} else {
		d.agg.Fold(value)
	}
	d.results = append(d.results, r)
	if d.observer != nil {
		d.observer(r)
	}
}

func (d *Dispatcher) checkDone() {
	if d.agg.Settled() {
		d.state = StateDone
	}
}

// abort tears down every live generation after a multiplexer failure.
// Workers are not signaled; their exit is awaited.
func (d *Dispatcher) abort() {
	for _, s := range d.slots {
		if s.worker == nil {
			continue
		}
		if s.state == models.SlotReaping {
			fd := s.worker.ExitFd()
			_ = d.mux.Deregister(fd)
			delete(d.byFd, fd)
		} else {
			ch := s.worker.Channel()
			_ = d.mux.Deregister(ch.Fd())
			delete(d.byFd, ch.Fd())
			_ = ch.Close()
		}
		_ = s.worker.Wait()
		d.live--
		s.retire()
	}
	d.state = StateDone
}

func (d *Dispatcher) err(ctx context.Context) error {
	if !d.agg.Settled() {
		return fmt.Errorf("run stopped after %d of %d terms: %w",
			d.agg.Completed()+d.agg.Failed(), d.agg.Target(), ctx.Err())
	}
	if len(d.errs) > 0 {
		return srvErrors.NewIncompleteRunError(d.agg.Failed(), d.agg.Target(), multierr.Combine(d.errs...))
	}
	return nil
}

func parseResult(slot, term int, payload []byte) (float64, error) {
	s := strings.TrimSpace(string(payload))
	if s == "" {
		return 0, srvErrors.NewEmptyResultError(slot, term)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, srvErrors.NewParseError(slot, term, s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, srvErrors.NewParseError(slot, term, s, errors.New("not a finite number"))
	}
	return v, nil
}
