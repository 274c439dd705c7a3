package repositories_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postboard/app/config"
	"postboard/app/models"
	"postboard/app/repositories"
	"postboard/app/repositories/contract"
)

func TestBadgerStoreContract(t *testing.T) {
	contract.RunStoreContract(t, func(t *testing.T) *repositories.Store {
		bs, err := repositories.OpenBadger("", true, zerolog.Nop())
		require.NoError(t, err)
		return bs.Store()
	})
}

func TestBadgerStoreOnDiskContract(t *testing.T) {
	contract.RunStoreContract(t, func(t *testing.T) *repositories.Store {
		bs, err := repositories.OpenBadger(filepath.Join(t.TempDir(), "badger"), false, zerolog.Nop())
		require.NoError(t, err)
		return bs.Store()
	})
}

func TestSQLiteStoreContract(t *testing.T) {
	contract.RunStoreContract(t, func(t *testing.T) *repositories.Store {
		ss, err := repositories.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "postboard.db"), zerolog.Nop())
		require.NoError(t, err)
		return ss.Store()
	})
}

func TestSQLiteMemoryStoreContract(t *testing.T) {
	contract.RunStoreContract(t, func(t *testing.T) *repositories.Store {
		ss, err := repositories.OpenSQLite(context.Background(), ":memory:", zerolog.Nop())
		require.NoError(t, err)
		return ss.Store()
	})
}

// Runs only when POSTBOARD_POSTGRES_DSN points at a disposable database.
func TestPostgresStoreContract(t *testing.T) {
	dsn := os.Getenv("POSTBOARD_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTBOARD_POSTGRES_DSN not set")
	}

	contract.RunStoreContract(t, func(t *testing.T) *repositories.Store {
		ctx := context.Background()
		ss, err := repositories.OpenPostgres(ctx, dsn, zerolog.Nop())
		require.NoError(t, err)
		_, err = ss.DB().ExecContext(ctx, "TRUNCATE posts, post_groups, authors RESTART IDENTITY CASCADE")
		require.NoError(t, err)
		return ss.Store()
	})
}

func TestBadgerStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "badger")

	bs, err := repositories.OpenBadger(path, false, zerolog.Nop())
	require.NoError(t, err)
	store := bs.Store()
	require.NoError(t, store.Groups.Create(ctx, groupFixture("cats")))
	require.NoError(t, store.Close())

	bs, err = repositories.OpenBadger(path, false, zerolog.Nop())
	require.NoError(t, err)
	store = bs.Store()
	defer store.Close()

	g, err := store.Groups.GetBySlug(ctx, "cats")
	require.NoError(t, err)
	assert.Equal(t, 1, g.ID)

	next := groupFixture("dogs")
	require.NoError(t, store.Groups.Create(ctx, next))
	assert.Equal(t, 2, next.ID, "sequence survives a reopen")
}

func TestBadgerStoreClear(t *testing.T) {
	ctx := context.Background()
	bs, err := repositories.OpenBadger("", true, zerolog.Nop())
	require.NoError(t, err)
	defer bs.Close()

	store := bs.Store()
	require.NoError(t, store.Groups.Create(ctx, groupFixture("cats")))
	require.NoError(t, bs.Clear())

	groups, err := store.Groups.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, groups)

	g := groupFixture("cats")
	require.NoError(t, store.Groups.Create(ctx, g))
	assert.Equal(t, 1, g.ID)
}

func TestBadgerPingAfterClose(t *testing.T) {
	bs, err := repositories.OpenBadger("", true, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, bs.Close())
	assert.Error(t, bs.Ping(context.Background()))
}

func TestOpenBadgerRequiresPath(t *testing.T) {
	_, err := repositories.OpenBadger("", false, zerolog.Nop())
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     config.StorageConfig
		driver  string
		wantErr bool
	}{
		{
			name:   "badger in memory",
			cfg:    config.StorageConfig{Driver: "badger", InMemory: true},
			driver: "badger",
		},
		{
			name:   "badger on disk",
			cfg:    config.StorageConfig{Driver: "badger", BadgerPath: filepath.Join(dir, "badger")},
			driver: "badger",
		},
		{
			name:   "sqlite in memory",
			cfg:    config.StorageConfig{Driver: "sqlite", InMemory: true},
			driver: repositories.DialectSQLite,
		},
		{
			name:   "sqlite file",
			cfg:    config.StorageConfig{Driver: "sqlite", SQLitePath: filepath.Join(dir, "nested", "p.db")},
			driver: repositories.DialectSQLite,
		},
		{
			name:    "postgres with a malformed dsn",
			cfg:     config.StorageConfig{Driver: "postgres", PostgresDSN: "::not a dsn::"},
			wantErr: true,
		},
		{
			name:    "unknown driver",
			cfg:     config.StorageConfig{Driver: "mongo"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := repositories.Open(ctx, tt.cfg, zerolog.Nop())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer store.Close()
			assert.Equal(t, tt.driver, store.Driver)
			assert.NoError(t, store.Ping(ctx))
		})
	}
}

func groupFixture(slug string) *models.Group {
	return &models.Group{Title: "Group " + slug, Slug: slug}
}
