// Package services implements the business logic between the entry points
// (CLI, HTTP handlers) and the dispatcher and store.
//
// # Service Dependency Graph
//
//	cmd/expsum run ──────────┐
//	                         ▼
//	Handlers ──► RunService ──► Executor (Runner) ──► dispatcher.Dispatcher
//	                 │                                    ├── readiness.Multiplexer
//	                 │                                    └── dispatcher.ExecLauncher
//	                 ├──► scheduler.Scheduler[models.Run]
//	                 └──► store.Store (runs, run_terms)
//
// # Runner
//
// Runner is the Executor used outside tests. For every run it validates the
// parameters, opens the multiplexer matching the mechanism, builds an exec
// launcher around the resolved worker path and runs a dispatcher to
// completion. The multiplexer is closed when the run returns.
//
// # RunService
//
// RunService records runs and executes them on a scheduler, so the number of
// runs executing at once is bounded by the scheduler pool.
//
// State Machine:
//
//	┌─────────┐    ┌─────────┐    ┌───────────┐
//	│ Pending │───►│ Running │───►│ Completed │
//	└─────────┘    └─────────┘    └───────────┘
//	     │              │
//	     │              ▼
//	     │         ┌────────┐
//	     └────────►│ Failed │
//	               └────────┘
//
//   - Pending: recorded by Submit, waiting for a scheduler worker
//   - Running: the dispatcher loop is active
//   - Completed: every term was folded
//   - Failed: at least one term failed, the run was canceled, or the
//     scheduler was closed before the run started
//
// A failed run still carries the partial total and the settled terms.
//
// Usage:
//
//	svc := services.NewRunService(st, sched, runner)
//	run, err := svc.Submit(ctx, models.RunParams{Base: 2, Terms: 5, Workers: 2, Mechanism: models.MechanismEpoll})
//	run, err = svc.Wait(ctx, run.ID)
//	terms, err := svc.Terms(ctx, run.ID)
//
// Record stores a run the CLI executed synchronously, so `expsum run
// --record` and the HTTP API share one history.
package services
