package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tupyy/expsum/internal/config"
	"github.com/tupyy/expsum/internal/models"
	"github.com/tupyy/expsum/internal/report"
	"github.com/tupyy/expsum/internal/services"
	srvErrors "github.com/tupyy/expsum/pkg/errors"
)

func newRunCommand(l *loader, defaults *config.Configuration) *cobra.Command {
	var (
		output string
		record bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compute the sum of x^k / k! for k in [0, N)",
		Example: `  expsum run -x 2 -n 5 -w 2 -p ./expsum-worker
  expsum run -x 3 -n 12 -m select --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := report.ParseFormat(output)
			if err != nil {
				return err
			}

			l.bindSection("run", cmd.Flags(), "base", "terms", "workers", "worker-path", "mechanism", "read-budget", "select-timeout")
			cfg, err := l.load()
			if err != nil {
				return err
			}
			defer func() { _ = zap.L().Sync() }()

			if err := cfg.Validate(); err != nil {
				if srvErrors.IsUnsupportedMechanismError(err) {
					fmt.Fprintln(cmd.OutOrStdout(), err.Error())
					return nil
				}
				return err
			}

			return runOnce(cmd, cfg, format, record)
		},
	}

	run := defaults.Run
	flags := cmd.Flags()
	flags.IntP("base", "x", run.Base, "base x of the series")
	flags.IntP("terms", "n", run.Terms, "number of terms N")
	flags.IntP("workers", "w", run.Workers, "number of concurrent worker processes")
	flags.StringP("worker-path", "p", run.WorkerPath, "worker executable, looked up in PATH when it has no slash")
	flags.StringP("mechanism", "m", run.Mechanism, "wait mechanism: epoll, select, poll or sequential")
	flags.Int("read-budget", run.ReadBudget, "bytes read from a worker channel per read call")
	flags.Duration("select-timeout", run.SelectTimeout, "ceiling of one select wait")
	flags.StringVarP(&output, "output", "o", string(report.FormatText), "output format: text, json or yaml")
	flags.BoolVar(&record, "record", false, "store the run in the history database")

	return cmd
}

func runOnce(cmd *cobra.Command, cfg *config.Configuration, format report.Format, record bool) error {
	runner, err := services.NewRunner(cfg.Run)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	params := cfg.Run.Params()
	var observer func(models.TermResult)
	if format == report.FormatText {
		observer = report.NewTracer(cmd.OutOrStdout(), params.Base).Observe
	}

	startedAt := time.Now()
	result, runErr := runner.Run(ctx, params, observer)

	run := models.Run{
		Params:    params,
		Status:    models.RunStatusCompleted,
		Result:    result,
		CreatedAt: startedAt.UTC(),
	}
	if runErr != nil {
		run.Status = models.RunStatusFailed
		run.Error = runErr.Error()
	}

	if record {
		recorded, err := recordRun(cmd, cfg, params, startedAt, result, runErr)
		if err != nil {
			return err
		}
		run = *recorded
	}

	if err := report.Render(cmd.OutOrStdout(), format, run); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return runErr
}

func recordRun(cmd *cobra.Command, cfg *config.Configuration, params models.RunParams, startedAt time.Time, result models.RunResult, runErr error) (*models.Run, error) {
	st, err := openStore(cmd, cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = st.Close() }()

	srv := services.NewRunService(st, nil, nil)
	// the run may have been interrupted; the record is written regardless
	run, err := srv.Record(context.WithoutCancel(cmd.Context()), params, startedAt, result, runErr)
	if err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	zap.S().Named("cli").Infow("run recorded", "id", run.ID, "folder", cfg.Store.DataFolder)
	return run, nil
}
