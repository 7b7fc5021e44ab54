package services

import (
	"context"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/tupyy/expsum/internal/config"
	"github.com/tupyy/expsum/internal/dispatcher"
	"github.com/tupyy/expsum/internal/models"
	"github.com/tupyy/expsum/pkg/readiness"
)

// Executor runs one summation to completion.
type Executor interface {
	Run(ctx context.Context, params models.RunParams, observer func(models.TermResult)) (models.RunResult, error)
}

// Runner executes runs with worker processes: it builds the multiplexer for
// the requested mechanism, an exec launcher and a dispatcher per run.
type Runner struct {
	workerPath    string
	readBudget    int
	selectTimeout time.Duration
	stderr        io.Writer
}

// NewRunner resolves the worker executable of cfg. Worker stderr is
// forwarded to the process stderr.
func NewRunner(cfg config.Run) (*Runner, error) {
	path, err := cfg.ResolveWorkerPath()
	if err != nil {
		return nil, err
	}
	return &Runner{
		workerPath:    path,
		readBudget:    cfg.ReadBudget,
		selectTimeout: cfg.SelectTimeout,
		stderr:        os.Stderr,
	}, nil
}

// WithStderr redirects the stderr of every worker to w.
func (r *Runner) WithStderr(w io.Writer) *Runner {
	r.stderr = w
	return r
}

func (r *Runner) Run(ctx context.Context, params models.RunParams, observer func(models.TermResult)) (models.RunResult, error) {
	if err := params.Validate(); err != nil {
		return models.RunResult{}, err
	}

	mux, err := readiness.New(params.Mechanism, readiness.WithSelectTimeout(r.selectTimeout))
	if err != nil {
		return models.RunResult{}, err
	}
	defer func() { _ = mux.Close() }()

	opts := []dispatcher.Option{dispatcher.WithReadBudget(r.readBudget)}
	if observer != nil {
		opts = append(opts, dispatcher.WithObserver(observer))
	}
	d := dispatcher.New(params, mux, dispatcher.NewExecLauncher(r.workerPath, params.Base, r.stderr), opts...)

	start := time.Now()
	result, err := d.Run(ctx)

	log := zap.S().Named("runner")
	if err != nil {
		log.Errorw("run finished with errors", "base", params.Base, "terms", params.Terms, "mechanism", params.Mechanism,
			"completed", result.Completed, "failed", result.Failed, "duration", time.Since(start), "error", err)
	} else {
		log.Infow("run finished", "base", params.Base, "terms", params.Terms, "mechanism", params.Mechanism,
			"total", result.Total, "iterations", result.Stats.Iterations, "max_live", result.Stats.MaxLive,
			"duration", time.Since(start))
	}
	return result, err
}
