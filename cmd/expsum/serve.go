package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	v1 "github.com/tupyy/expsum/api/v1"
	"github.com/tupyy/expsum/internal/config"
	"github.com/tupyy/expsum/internal/handlers"
	"github.com/tupyy/expsum/internal/models"
	"github.com/tupyy/expsum/internal/server"
	"github.com/tupyy/expsum/internal/services"
	"github.com/tupyy/expsum/pkg/scheduler"
)

func newServeCommand(l *loader, defaults *config.Configuration) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the run API over HTTP",
		Long: `serve accepts runs over HTTP, executes at most max-concurrent-runs of them at
a time and keeps their results in the history database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l.bindSection("server", cmd.Flags(), "mode", "http-port", "max-concurrent-runs", "shutdown-timeout")
			l.bindSection("run", cmd.Flags(), "worker-path")
			cfg, err := l.load()
			if err != nil {
				return err
			}
			defer func() { _ = zap.L().Sync() }()

			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.ValidateServer(); err != nil {
				return err
			}
			return serve(cmd, cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("mode", defaults.Server.Mode, "server mode: dev or prod")
	flags.Int("http-port", defaults.Server.HTTPPort, "port of the HTTP API")
	flags.Int("max-concurrent-runs", defaults.Server.MaxConcurrentRuns, "number of runs executed at the same time")
	flags.Duration("shutdown-timeout", defaults.Server.ShutdownTimeout, "grace period for in-flight requests on shutdown")
	flags.StringP("worker-path", "p", defaults.Run.WorkerPath, "worker executable, looked up in PATH when it has no slash")

	return cmd
}

func serve(cmd *cobra.Command, cfg *config.Configuration) (err error) {
	log := zap.S().Named("serve")

	runner, err := services.NewRunner(cfg.Run)
	if err != nil {
		return err
	}

	st, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, st.Close()) }()

	sched := scheduler.NewScheduler[models.Run](cfg.Server.MaxConcurrentRuns)
	runSrv := services.NewRunService(st, sched, runner)

	srv, err := server.NewServer(cfg.Server, func(router *gin.RouterGroup) {
		v1.RegisterHandlers(router, handlers.New(runSrv))
	})
	if err != nil {
		sched.Close()
		runSrv.Close()
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case <-ctx.Done():
		log.Infow("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	case err := <-errCh:
		sched.Close()
		runSrv.Close()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs error
	if err := srv.Stop(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		errs = multierr.Append(errs, err)
	}
	// cancels running runs and fails queued ones
	sched.Close()
	// the refused runs are recorded before the store closes
	runSrv.Close()
	errs = multierr.Append(errs, <-errCh)

	log.Info("server stopped")
	return errs
}
