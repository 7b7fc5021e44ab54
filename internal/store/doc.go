// Package store implements the run history of expsum.
//
// Runs and their per-term outcomes are kept in DuckDB, either in a file under
// the configured data folder or in memory. The schema is created by the
// migrations sub-package.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                         Store (facade)                          │
//	├────────────────────────────────┬────────────────────────────────┤
//	│           RunStore             │           TermStore            │
//	│              ▼                 │              ▼                 │
//	│            runs                │           run_terms            │
//	├────────────────────────────────┴────────────────────────────────┤
//	│                      QueryInterceptor                           │
//	│                             ▼                                   │
//	│                      *sql.DB (duckdb)                           │
//	└─────────────────────────────────────────────────────────────────┘
//
// # Tables
//
//	┌────────────────────┬─────────────────────────────────────────────┐
//	│  Table             │  Purpose                                    │
//	├────────────────────┼─────────────────────────────────────────────┤
//	│  runs              │  parameters, status, total and stats of a   │
//	│                    │  run, keyed by a uuid                       │
//	│  run_terms         │  one row per settled term (value or error)  │
//	│  schema_migrations │  applied migration versions                 │
//	└────────────────────┴─────────────────────────────────────────────┘
//
// # Opening
//
//	db, err := store.NewDB(filepath.Join(dataFolder, "expsum.duckdb"))
//	err = migrations.Run(ctx, db)
//	s := store.NewStore(db)
//
// DuckDB takes an exclusive lock on a database file. NewDB retries with an
// exponential backoff so a second CLI invocation waits for the first one to
// release the file instead of failing at once.
//
// # RunStore
//
// Methods:
//   - Create(ctx, run) → error
//   - Update(ctx, run) → error (status, result, stats, finished_at)
//   - Get(ctx, id) → *models.Run, RunNotFoundError when unknown
//   - List(ctx, opts...) → []models.Run
//   - Count(ctx, filters...) → int
//
// List uses functional options, each one modifying a squirrel.SelectBuilder:
//
//	runs, err := s.Runs().List(ctx,
//	    store.ByStatus(models.RunStatusCompleted),
//	    store.ByMechanism(models.MechanismSelect),
//	    store.WithDefaultSort(),
//	    store.WithLimit(20),
//	    store.WithOffset(40),
//	)
//
// # TermStore
//
// Save replaces the rows of a run in one transaction. List returns them by
// term index, whatever order they settled in.
//
// # QueryInterceptor
//
// Every statement issued by the sub-stores goes through a QueryInterceptor
// that logs the query, its arguments and its duration at debug level.
package store
