package store

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/tupyy/expsum/internal/models"
)

// TermStore persists the per-term outcome of runs.
type TermStore struct {
	db QueryInterceptor
}

func NewTermStore(db QueryInterceptor) *TermStore {
	return &TermStore{db: db}
}

// Save replaces every term recorded for runID.
func (s *TermStore) Save(ctx context.Context, runID string, terms []models.TermResult) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, queryDeleteTerms, runID); err != nil {
		return fmt.Errorf("failed to clear terms of run %s: %w", runID, err)
	}

	if len(terms) > 0 {
		builder := sq.Insert("run_terms").Columns(termColumns...)
		for _, t := range terms {
			msg := ""
			if t.Err != nil {
				msg = t.Err.Error()
			}
			builder = builder.Values(runID, t.Term, t.Slot, t.Value, msg)
		}
		query, args, err := builder.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to save terms of run %s: %w", runID, err)
		}
	}

	return tx.Commit()
}

// List returns the terms of runID ordered by term index.
func (s *TermStore) List(ctx context.Context, runID string) ([]models.TermResult, error) {
	query, args, err := sq.Select(termColumns[1:]...).
		From("run_terms").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("term").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []models.TermResult
	for rows.Next() {
		var (
			t   models.TermResult
			msg string
		)
		if err := rows.Scan(&t.Term, &t.Slot, &t.Value, &msg); err != nil {
			return nil, err
		}
		if msg != "" {
			t.Err = errors.New(msg)
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}
