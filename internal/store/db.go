package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	_ "github.com/duckdb/duckdb-go/v2"
	"go.uber.org/zap"
)

const openTimeout = 10 * time.Second

// NewDB opens the DuckDB database at path. ":memory:" keeps it in memory.
// A file held by another process is retried until openTimeout.
func NewDB(path string) (*sql.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()

	return backoff.Retry(ctx, func() (*sql.DB, error) {
		db, err := sql.Open("duckdb", path)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to open database %q: %w", path, err))
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to ping database %q: %w", path, err)
		}
		return db, nil
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(openTimeout),
		backoff.WithNotify(func(err error, next time.Duration) {
			zap.S().Named("store").Warnw("database not ready, retrying", "path", path, "retry_in", next, "error", err)
		}),
	)
}
