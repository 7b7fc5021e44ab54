package store

import "database/sql"

// Store provides access to all storage repositories.
type Store struct {
	db    *sql.DB
	runs  *RunStore
	terms *TermStore
}

func NewStore(db *sql.DB) *Store {
	qi := NewQueryInterceptor(db)
	return &Store{
		db:    db,
		runs:  NewRunStore(qi),
		terms: NewTermStore(qi),
	}
}

func (s *Store) Runs() *RunStore {
	return s.runs
}

func (s *Store) Terms() *TermStore {
	return s.terms
}

func (s *Store) Close() error {
	return s.db.Close()
}
