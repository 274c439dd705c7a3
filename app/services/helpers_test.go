package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"postboard/app/models"
	"postboard/app/repositories"
	"postboard/app/repositories/mock"
)

func intPtr(v int) *int { return &v }

type fixture struct {
	mock  *mock.Store
	store *repositories.Store
	svc   *Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m := mock.NewStore()
	store := m.Repositories()
	return &fixture{mock: m, store: store, svc: New(store, zerolog.Nop())}
}

func (f *fixture) author(t *testing.T, username string) *models.Author {
	t.Helper()
	a, err := f.svc.Authors.CreateAuthor(context.Background(), username)
	require.NoError(t, err)
	return a
}

func (f *fixture) group(t *testing.T, slug string) *models.Group {
	t.Helper()
	g, err := f.svc.Groups.CreateGroup(context.Background(), models.Group{Title: "Group " + slug, Slug: slug})
	require.NoError(t, err)
	return g
}

// post stores a post directly with a fixed timestamp so ordering is deterministic.
func (f *fixture) post(t *testing.T, author *models.Author, group *models.Group, text string, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{Text: text, CreatedAt: at}
	require.NoError(t, p.SetAuthor(author))
	p.SetGroup(group)
	require.NoError(t, f.store.Posts.Create(context.Background(), p))
	return p
}
