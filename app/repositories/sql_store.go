package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// SQLStore serves the repositories from SQLite or Postgres through
// database/sql. Queries are written with '?' placeholders and rebound per
// dialect. Timestamps are stored as unix nanoseconds.
type SQLStore struct {
	db      *sql.DB
	dialect string
	log     zerolog.Logger
}

var schema = map[string][]string{
	DialectSQLite: {
		// pragmas are per connection; the pool holds exactly one
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS authors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS post_groups (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS posts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			text TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			author_id INTEGER NOT NULL REFERENCES authors(id),
			group_id INTEGER NULL REFERENCES post_groups(id)
		)`,
		`CREATE INDEX IF NOT EXISTS posts_listing_idx ON posts (created_at DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS posts_group_idx ON posts (group_id)`,
		`CREATE INDEX IF NOT EXISTS posts_author_idx ON posts (author_id)`,
	},
	DialectPostgres: {
		`CREATE TABLE IF NOT EXISTS authors (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			created_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS post_groups (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS posts (
			id BIGSERIAL PRIMARY KEY,
			text TEXT NOT NULL,
			created_at BIGINT NOT NULL,
			author_id BIGINT NOT NULL REFERENCES authors(id),
			group_id BIGINT NULL REFERENCES post_groups(id)
		)`,
		`CREATE INDEX IF NOT EXISTS posts_listing_idx ON posts (created_at DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS posts_group_idx ON posts (group_id)`,
		`CREATE INDEX IF NOT EXISTS posts_author_idx ON posts (author_id)`,
	},
}

// OpenSQLite opens the database file at path (":memory:" for a private
// in-memory database) and creates the tables if needed.
func OpenSQLite(ctx context.Context, path string, logger zerolog.Logger) (*SQLStore, error) {
	if path == "" {
		return nil, errors.New("empty sqlite path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection keeps an in-memory database alive and serializes writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return newSQLStore(ctx, db, DialectSQLite, logger)
}

// OpenPostgres connects through the pgx stdlib adapter with query tracing
// routed to logger.
func OpenPostgres(ctx context.Context, dsn string, logger zerolog.Logger) (*SQLStore, error) {
	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}
	connConfig.Tracer = &tracelog.TraceLog{
		Logger:   newPgxLogger(logger),
		LogLevel: tracelogLevel(logger.GetLevel()),
	}
	db := stdlib.OpenDB(*connConfig)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	logger.Info().
		Str("host", connConfig.Host).
		Uint16("port", connConfig.Port).
		Str("db", connConfig.Database).
		Msg("connected to postgres")

	return newSQLStore(ctx, db, DialectPostgres, logger)
}

func newSQLStore(ctx context.Context, db *sql.DB, dialect string, logger zerolog.Logger) (*SQLStore, error) {
	s := &SQLStore{
		db:      db,
		dialect: dialect,
		log:     logger.With().Str("component", "sql").Str("dialect", dialect).Logger(),
	}
	for _, stmt := range schema[dialect] {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init %s schema: %w", dialect, err)
		}
	}
	return s, nil
}

// DropSchema removes every table; the next open recreates them empty.
func (s *SQLStore) DropSchema(ctx context.Context) error {
	for _, table := range []string{"posts", "post_groups", "authors"} {
		if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	s.log.Info().Msg("schema dropped")
	return nil
}

func (s *SQLStore) DB() *sql.DB { return s.db }

func (s *SQLStore) Dialect() string { return s.dialect }

func (s *SQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLStore) Close() error { return s.db.Close() }

// Store exposes the SQL repositories behind the engine-neutral Store.
func (s *SQLStore) Store() *Store {
	return NewStore(s.dialect,
		&SQLPostRepository{s: s},
		&SQLGroupRepository{s: s},
		&SQLAuthorRepository{s: s},
		s.Ping,
		s.Close,
	)
}

func (s *SQLStore) rebind(query string) string {
	return rebind(s.dialect, query)
}

// rebind rewrites '?' placeholders to $1..$n for Postgres.
func rebind(dialect, query string) string {
	if dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// mapSQLError translates driver errors into the package sentinels.
// Everything it does not recognise passes through unchanged.
func mapSQLError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return ErrAlreadyExists
		case pgerrcode.ForeignKeyViolation:
			return ErrConflict
		}
		return err
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return ErrAlreadyExists
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return ErrConflict
		case sqlite3.SQLITE_CONSTRAINT:
			// primary result code only: fall back to the message
			msg := liteErr.Error()
			if strings.Contains(msg, "UNIQUE") {
				return ErrAlreadyExists
			}
			if strings.Contains(msg, "FOREIGN KEY") {
				return ErrConflict
			}
		}
	}
	return err
}

func toUnixNano(t time.Time) int64 { return t.UTC().UnixNano() }

func fromUnixNano(n int64) time.Time { return time.Unix(0, n).UTC() }
