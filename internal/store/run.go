package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/tupyy/expsum/internal/models"
	srvErrors "github.com/tupyy/expsum/pkg/errors"
)

// RunStore persists one row per run.
type RunStore struct {
	db QueryInterceptor
}

func NewRunStore(db QueryInterceptor) *RunStore {
	return &RunStore{db: db}
}

func (s *RunStore) Create(ctx context.Context, run models.Run) error {
	query, args, err := sq.Insert("runs").
		Columns(runColumns...).
		Values(runValues(run)...).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create run %s: %w", run.ID, err)
	}
	return nil
}

// Update overwrites the status, result and timestamps of an existing run.
func (s *RunStore) Update(ctx context.Context, run models.Run) error {
	query, args, err := sq.Update("runs").
		SetMap(map[string]any{
			"status":      run.Status.Value(),
			"total":       run.Result.Total,
			"completed":   run.Result.Completed,
			"failed":      run.Result.Failed,
			"error":       run.Error,
			"iterations":  run.Result.Stats.Iterations,
			"spawned":     run.Result.Stats.Spawned,
			"max_live":    run.Result.Stats.MaxLive,
			"finished_at": nullTime(run),
		}).
		Where(sq.Eq{"id": run.ID}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update run %s: %w", run.ID, err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return srvErrors.NewRunNotFoundError(run.ID)
	}
	return nil
}

func (s *RunStore) Get(ctx context.Context, id string) (*models.Run, error) {
	query, args, err := sq.Select(runColumns...).From("runs").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	run, err := scanRun(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewRunNotFoundError(id)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (s *RunStore) List(ctx context.Context, opts ...ListOption) ([]models.Run, error) {
	builder := sq.Select(runColumns...).From("runs")
	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Count takes filter options only. Pagination is dropped; a sort option
// would make the query invalid.
func (s *RunStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	builder := sq.Select("COUNT(*)").From("runs")
	for _, opt := range opts {
		builder = opt(builder)
	}
	builder = builder.RemoveLimit().RemoveOffset()

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*models.Run, error) {
	var (
		run       models.Run
		mechanism string
		status    string
		finished  sql.NullTime
	)
	err := row.Scan(
		&run.ID,
		&run.Params.Base,
		&run.Params.Terms,
		&run.Params.Workers,
		&mechanism,
		&status,
		&run.Result.Total,
		&run.Result.Completed,
		&run.Result.Failed,
		&run.Error,
		&run.Result.Stats.Iterations,
		&run.Result.Stats.Spawned,
		&run.Result.Stats.MaxLive,
		&run.CreatedAt,
		&finished,
	)
	if err != nil {
		return nil, err
	}

	run.Params.Mechanism = models.Mechanism(mechanism)
	run.Status = models.RunStatus(status)
	run.Result.Target = run.Params.Terms
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return &run, nil
}

func runValues(run models.Run) []any {
	return []any{
		run.ID,
		run.Params.Base,
		run.Params.Terms,
		run.Params.Workers,
		run.Params.Mechanism.String(),
		run.Status.Value(),
		run.Result.Total,
		run.Result.Completed,
		run.Result.Failed,
		run.Error,
		run.Result.Stats.Iterations,
		run.Result.Stats.Spawned,
		run.Result.Stats.MaxLive,
		run.CreatedAt,
		nullTime(run),
	}
}

func nullTime(run models.Run) sql.NullTime {
	if run.FinishedAt == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *run.FinishedAt, Valid: true}
}
