package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// BadgerStore owns the badger handle shared by the badger repositories.
type BadgerStore struct {
	db       *badger.DB
	path     string
	inMemory bool
}

// OpenBadger opens (or creates) a badger database at path. With inMemory
// set, path is ignored and nothing touches the disk.
func OpenBadger(path string, inMemory bool, logger zerolog.Logger) (*BadgerStore, error) {
	if !inMemory && path == "" {
		return nil, errors.New("badger path is required")
	}
	opts := badger.DefaultOptions(path).
		WithLogger(newBadgerLogger(logger)).
		WithLoggingLevel(badger.WARNING).
		WithNumVersionsToKeep(1)
	if inMemory {
		opts = opts.WithDir("").WithValueDir("").WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	return &BadgerStore{db: db, path: path, inMemory: inMemory}, nil
}

// NewBadgerStore wraps an already opened database.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func (s *BadgerStore) DB() *badger.DB { return s.db }

func (s *BadgerStore) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger database is closed")
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Clear drops every key, sequences included.
func (s *BadgerStore) Clear() error {
	return s.db.DropAll()
}

// Store exposes the badger repositories behind the engine-neutral Store.
func (s *BadgerStore) Store() *Store {
	return NewStore("badger",
		NewBadgerPostRepository(s.db),
		NewBadgerGroupRepository(s.db),
		NewBadgerAuthorRepository(s.db),
		s.Ping,
		s.Close,
	)
}
