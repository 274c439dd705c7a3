package repositories

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"postboard/app/config"
)

// Store bundles the repositories of one backing engine.
type Store struct {
	Posts   PostRepository
	Groups  GroupRepository
	Authors AuthorRepository

	Driver string

	ping  func(ctx context.Context) error
	close func() error
}

// NewStore assembles a Store from parts. ping and closeFn may be nil.
func NewStore(driver string, posts PostRepository, groups GroupRepository, authors AuthorRepository,
	ping func(ctx context.Context) error, closeFn func() error) *Store {
	return &Store{
		Posts:   posts,
		Groups:  groups,
		Authors: authors,
		Driver:  driver,
		ping:    ping,
		close:   closeFn,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open connects the engine selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) (*Store, error) {
	switch cfg.Driver {
	case "badger", "":
		path := cfg.BadgerPath
		if cfg.InMemory {
			path = ""
		}
		bs, err := OpenBadger(path, cfg.InMemory, logger)
		if err != nil {
			return nil, err
		}
		return bs.Store(), nil
	case DialectSQLite:
		path := cfg.SQLitePath
		if cfg.InMemory {
			path = ":memory:"
		}
		ss, err := OpenSQLite(ctx, path, logger)
		if err != nil {
			return nil, err
		}
		return ss.Store(), nil
	case DialectPostgres:
		ss, err := OpenPostgres(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			return nil, err
		}
		return ss.Store(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
