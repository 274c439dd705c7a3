package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postboard/app/models"
	"postboard/app/repositories"
)

func TestGroupService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	g, err := f.svc.Groups.CreateGroup(ctx, models.Group{ID: 99, Title: " Cats ", Slug: "cats", Description: "meow"})
	require.NoError(t, err)
	assert.Equal(t, 1, g.ID)
	assert.Equal(t, "Cats", g.Title)

	_, err = f.svc.Groups.CreateGroup(ctx, models.Group{Title: "Again", Slug: "cats"})
	assert.ErrorIs(t, err, repositories.ErrAlreadyExists)

	tests := []struct {
		name  string
		group models.Group
		field string
	}{
		{"missing title", models.Group{Slug: "a"}, "title"},
		{"long title", models.Group{Title: strings.Repeat("t", 201), Slug: "a"}, "title"},
		{"bad slug", models.Group{Title: "A", Slug: "a b"}, "slug"},
		{"long slug", models.Group{Title: "A", Slug: strings.Repeat("s", 51)}, "slug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Groups.CreateGroup(ctx, tt.group)
			require.ErrorIs(t, err, ErrInvalidInput)
			require.Len(t, FieldErrors(err), 1)
			assert.Equal(t, tt.field, FieldErrors(err)[0].Field)
		})
	}

	got, err := f.svc.Groups.GetGroup(ctx, "cats")
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.ID)

	_, err = f.svc.Groups.GetGroup(ctx, "dogs")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	f.group(t, "dogs")
	all, err := f.svc.Groups.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "cats", all[0].Slug)
}

func TestAuthorService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.svc.Authors.CreateAuthor(ctx, " leo.t@x ")
	require.NoError(t, err)
	assert.Equal(t, "leo.t@x", a.Username)
	assert.False(t, a.CreatedAt.IsZero())

	_, err = f.svc.Authors.CreateAuthor(ctx, "leo.t@x")
	assert.ErrorIs(t, err, repositories.ErrAlreadyExists)

	for _, bad := range []string{"", "has space", strings.Repeat("u", 151), "semi;colon"} {
		_, err := f.svc.Authors.CreateAuthor(ctx, bad)
		require.ErrorIs(t, err, ErrInvalidInput, bad)
		assert.Equal(t, "username", FieldErrors(err)[0].Field)
	}

	got, err := f.svc.Authors.GetAuthor(ctx, "leo.t@x")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = f.svc.Authors.GetAuthor(ctx, "ghost")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	all, err := f.svc.Authors.ListAuthors(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
