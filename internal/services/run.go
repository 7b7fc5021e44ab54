package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tupyy/expsum/internal/models"
	"github.com/tupyy/expsum/internal/store"
	"github.com/tupyy/expsum/pkg/scheduler"
)

// RunService records runs and executes them asynchronously on a scheduler.
type RunService struct {
	store     *store.Store
	scheduler *scheduler.Scheduler[models.Run]
	executor  Executor

	mu       sync.Mutex
	running  map[string]chan struct{}
	closed   bool
	watchers sync.WaitGroup
}

func NewRunService(st *store.Store, sched *scheduler.Scheduler[models.Run], executor Executor) *RunService {
	return &RunService{
		store:     st,
		scheduler: sched,
		executor:  executor,
		running:   make(map[string]chan struct{}),
	}
}

type RunListParams struct {
	Statuses   []models.RunStatus
	Mechanisms []models.Mechanism
	Limit    uint64
	Offset   uint64
}

type RunListResult struct {
	Runs  []models.Run
	Total int
}

// Submit validates params, records a pending run and schedules it. Invalid
// parameters are returned before anything is recorded.
func (s *RunService) Submit(ctx context.Context, params models.RunParams) (*models.Run, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, scheduler.ErrClosed
	}
	s.watchers.Add(1)
	s.mu.Unlock()

	run := models.Run{
		ID:        uuid.NewString(),
		Params:    params,
		Status:    models.RunStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Runs().Create(ctx, run); err != nil {
		s.watchers.Done()
		return nil, err
	}

	done := make(chan struct{})
	s.mu.Lock()
	s.running[run.ID] = done
	s.mu.Unlock()

	future := s.scheduler.Submit(func(ctx context.Context) (models.Run, error) {
		defer s.release(run.ID, done)
		return s.execute(ctx, run)
	})
	go s.watch(run, future, done)

	zap.S().Named("run_service").Infow("run submitted", "id", run.ID, "base", params.Base, "terms", params.Terms,
		"workers", params.Workers, "mechanism", params.Mechanism)
	return &run, nil
}

// Record stores a run that was executed outside the scheduler.
func (s *RunService) Record(ctx context.Context, params models.RunParams, startedAt time.Time, result models.RunResult, runErr error) (*models.Run, error) {
	run := models.Run{
		ID:        uuid.NewString(),
		Params:    params,
		Status:    models.RunStatusRunning,
		CreatedAt: startedAt.UTC(),
	}
	if err := s.store.Runs().Create(ctx, run); err != nil {
		return nil, err
	}
	if err := s.finish(ctx, &run, result, runErr); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *RunService) Get(ctx context.Context, id string) (*models.Run, error) {
	return s.store.Runs().Get(ctx, id)
}

func (s *RunService) List(ctx context.Context, params RunListParams) (*RunListResult, error) {
	filters := []store.ListOption{store.ByStatus(params.Statuses...), store.ByMechanism(params.Mechanisms...)}

	opts := append([]store.ListOption{}, filters...)
	opts = append(opts, store.WithDefaultSort())
	if params.Limit > 0 {
		opts = append(opts, store.WithLimit(params.Limit))
	}
	if params.Offset > 0 {
		opts = append(opts, store.WithOffset(params.Offset))
	}

	runs, err := s.store.Runs().List(ctx, opts...)
	if err != nil {
		return nil, err
	}
	total, err := s.store.Runs().Count(ctx, filters...)
	if err != nil {
		return nil, err
	}
	return &RunListResult{Runs: runs, Total: total}, nil
}

// Terms returns the settled terms of a run. It fails with RunNotFoundError
// for an unknown id.
func (s *RunService) Terms(ctx context.Context, id string) ([]models.TermResult, error) {
	if _, err := s.store.Runs().Get(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Terms().List(ctx, id)
}

// Wait blocks until the run id is no longer executing and returns its
// stored state.
func (s *RunService) Wait(ctx context.Context, id string) (*models.Run, error) {
	s.mu.Lock()
	done, ok := s.running[id]
	s.mu.Unlock()

	if ok {
		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.store.Runs().Get(ctx, id)
}

func (s *RunService) execute(ctx context.Context, run models.Run) (models.Run, error) {
	log := zap.S().Named("run_service")
	// the scheduler cancels ctx on shutdown; the record must still be written
	storeCtx := context.WithoutCancel(ctx)

	run.Status = models.RunStatusRunning
	if err := s.store.Runs().Update(storeCtx, run); err != nil {
		log.Errorw("failed to mark run as running", "id", run.ID, "error", err)
		return run, err
	}

	result, runErr := s.executor.Run(ctx, run.Params, nil)
	if err := s.finish(storeCtx, &run, result, runErr); err != nil {
		log.Errorw("failed to record run result", "id", run.ID, "error", err)
		return run, err
	}

	log.Infow("run done", "id", run.ID, "status", run.Status, "total", run.Result.Total,
		"completed", run.Result.Completed, "failed", run.Result.Failed)
	return run, runErr
}

func (s *RunService) finish(ctx context.Context, run *models.Run, result models.RunResult, runErr error) error {
	finished := time.Now().UTC()
	run.Result = result
	run.FinishedAt = &finished
	run.Status = models.RunStatusCompleted
	if runErr != nil {
		run.Status = models.RunStatusFailed
		run.Error = runErr.Error()
	}

	if err := s.store.Terms().Save(ctx, run.ID, result.Terms); err != nil {
		return err
	}
	return s.store.Runs().Update(ctx, *run)
}

// Close refuses new runs and waits until every submitted run is recorded.
// It must be called after the scheduler is closed and before the store is.
func (s *RunService) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.watchers.Wait()
}

// watch fails a run the scheduler refused because it was closing.
func (s *RunService) watch(run models.Run, future *scheduler.Future[models.Run], done chan struct{}) {
	defer s.watchers.Done()
	r := <-future.C()
	if !errors.Is(r.Err, scheduler.ErrClosed) {
		return
	}
	if err := s.finish(context.Background(), &run, models.RunResult{Target: run.Params.Terms}, r.Err); err != nil {
		zap.S().Named("run_service").Errorw("failed to record refused run", "id", run.ID, "error", err)
	}
	s.release(run.ID, done)
}

func (s *RunService) release(id string, done chan struct{}) {
	s.mu.Lock()
	delete(s.running, id)
	s.mu.Unlock()
	close(done)
}
