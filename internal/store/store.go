package store

import "database/sql"

// Store provides access to all storage repositories.
type Store struct {
	db       *sql.DB
	profiles *ProfileStore
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:       db,
		profiles: NewProfileStore(db),
	}
}

func (s *Store) Profiles() *ProfileStore {
	return s.profiles
}

func (s *Store) Close() error {
	return s.db.Close()
}
