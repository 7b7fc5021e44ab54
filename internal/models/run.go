package models

import (
	"fmt"
	"time"

	srvErrors "github.com/tupyy/expsum/pkg/errors"
)

// RunParams describes one summation.
type RunParams struct {
	Base      int
	Terms     int
	Workers   int
	Mechanism Mechanism
}

// Validate reports the first invalid argument. A mechanism that is known but
// not implemented yields an UnsupportedMechanismError.
func (p RunParams) Validate() error {
	if p.Workers < 1 {
		return srvErrors.NewConfigurationError("num_workers", fmt.Sprintf("%d: must be at least 1", p.Workers))
	}
	if p.Terms < 0 {
		return srvErrors.NewConfigurationError("num_terms", fmt.Sprintf("%d: must not be negative", p.Terms))
	}
	m, err := ParseMechanism(string(p.Mechanism))
	if err != nil {
		return srvErrors.NewConfigurationError("wait_mechanism", err.Error())
	}
	if !m.Supported() {
		return srvErrors.NewUnsupportedMechanismError(m.String())
	}
	return nil
}

// TermResult is the outcome of a single term.
type TermResult struct {
	Term  int
	Slot  int
	Value float64
	Err   error
}

func (t TermResult) Failed() bool {
	return t.Err != nil
}

// RunStats holds dispatcher counters that are not part of the answer.
type RunStats struct {
	Iterations int
	Spawned    int
	MaxLive    int
}

// RunResult is the aggregate state at the end of a run.
type RunResult struct {
	Total     float64
	Completed int
	Failed    int
	Target    int
	Terms     []TermResult
	Stats     RunStats
}

// RunStatus represents the state of a recorded run.
type RunStatus string

const (
	// RunStatusPending - accepted, waiting for a scheduler worker
	RunStatusPending RunStatus = "pending"
	// RunStatusRunning - dispatcher loop active
	RunStatusRunning RunStatus = "running"
	// RunStatusCompleted - every term folded
	RunStatusCompleted RunStatus = "completed"
	// RunStatusFailed - the run ended with at least one failed term or could not start
	RunStatusFailed RunStatus = "failed"
)

func (s RunStatus) Value() string {
	return string(s)
}

// Run is a recorded summation.
type Run struct {
	ID         string
	Params     RunParams
	Status     RunStatus
	Result     RunResult
	Error      string
	CreatedAt  time.Time
	FinishedAt *time.Time
}
