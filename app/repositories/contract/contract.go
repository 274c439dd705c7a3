// Package contract holds the behavioural suite every repositories.Store
// engine must pass.
package contract

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postboard/app/models"
	"postboard/app/repositories"
)

// Factory returns an empty store. The suite closes it when the subtest ends.
type Factory func(t *testing.T) *repositories.Store

// RunStoreContract runs every contract subtest against stores built by newStore.
func RunStoreContract(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s *repositories.Store)
	}{
		{"AuthorCreateAndGet", testAuthorCreateAndGet},
		{"AuthorDuplicateUsername", testAuthorDuplicateUsername},
		{"GroupCreateAndGet", testGroupCreateAndGet},
		{"GroupDuplicateSlug", testGroupDuplicateSlug},
		{"PostCreateAndGet", testPostCreateAndGet},
		{"PostNotFound", testPostNotFound},
		{"PostMissingReferences", testPostMissingReferences},
		{"PostUpdate", testPostUpdate},
		{"ListingOrder", testListingOrder},
		{"FilteredListingsAreOrderedSubsets", testFilteredSubsets},
		{"CountByAuthor", testCountByAuthor},
		{"EmptyListings", testEmptyListings},
		{"Ping", testPing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

func mustAuthor(t *testing.T, s *repositories.Store, username string) *models.Author {
	t.Helper()
	a := &models.Author{Username: username}
	a.BeforeCreate()
	require.NoError(t, s.Authors.Create(context.Background(), a))
	require.NotZero(t, a.ID)
	return a
}

func mustGroup(t *testing.T, s *repositories.Store, slug string) *models.Group {
	t.Helper()
	g := &models.Group{Title: "Group " + slug, Slug: slug, Description: "about " + slug}
	require.NoError(t, s.Groups.Create(context.Background(), g))
	require.NotZero(t, g.ID)
	return g
}

func mustPost(t *testing.T, s *repositories.Store, author *models.Author, group *models.Group, text string, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{Text: text, CreatedAt: at}
	require.NoError(t, p.SetAuthor(author))
	p.SetGroup(group)
	require.NoError(t, s.Posts.Create(context.Background(), p))
	require.NotZero(t, p.ID)
	return p
}

func ids(posts []*models.Post) []int {
	out := make([]int, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testAuthorCreateAndGet(t *testing.T, s *repositories.Store) {
	ctx := context.Background()
	a := mustAuthor(t, s, "leo")
	b := mustAuthor(t, s, "anna.k")

	got, err := s.Authors.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "leo", got.Username)
	assert.True(t, a.CreatedAt.Equal(got.CreatedAt))

	got, err = s.Authors.GetByUsername(ctx, "anna.k")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = s.Authors.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = s.Authors.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	all, err := s.Authors.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a.ID, all[0].ID)
	assert.Equal(t, b.ID, all[1].ID)
}

func testAuthorDuplicateUsername(t *testing.T, s *repositories.Store) {
	mustAuthor(t, s, "leo")
	dup := &models.Author{Username: "leo"}
	dup.BeforeCreate()
	err := s.Authors.Create(context.Background(), dup)
	assert.ErrorIs(t, err, repositories.ErrAlreadyExists)

	all, err := s.Authors.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testGroupCreateAndGet(t *testing.T, s *repositories.Store) {
	ctx := context.Background()
	g := mustGroup(t, s, "cats")
	mustGroup(t, s, "dogs")

	got, err := s.Groups.GetBySlug(ctx, "cats")
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.ID)
	assert.Equal(t, "Group cats", got.Title)
	assert.Equal(t, "about cats", got.Description)

	got, err = s.Groups.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "cats", got.Slug)

	_, err = s.Groups.GetBySlug(ctx, "birds")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	all, err := s.Groups.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "cats", all[0].Slug)
	assert.Equal(t, "dogs", all[1].Slug)
}

func testGroupDuplicateSlug(t *testing.T, s *repositories.Store) {
	mustGroup(t, s, "cats")
	err := s.Groups.Create(context.Background(), &models.Group{Title: "Other", Slug: "cats"})
	assert.ErrorIs(t, err, repositories.ErrAlreadyExists)
}

func testPostCreateAndGet(t *testing.T, s *repositories.Store) {
	ctx := context.Background()
	a := mustAuthor(t, s, "leo")
	g := mustGroup(t, s, "cats")

	withGroup := mustPost(t, s, a, g, "hello cats", base)
	noGroup := mustPost(t, s, a, nil, "hello world", base.Add(time.Minute))
	assert.NotEqual(t, withGroup.ID, noGroup.ID)

	got, err := s.Posts.GetByID(ctx, withGroup.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello cats", got.Text)
	assert.Equal(t, a.ID, got.AuthorID)
	require.NotNil(t, got.GroupID)
	assert.Equal(t, g.ID, *got.GroupID)
	assert.True(t, base.Equal(got.CreatedAt))

	got, err = s.Posts.GetByID(ctx, noGroup.ID)
	require.NoError(t, err)
	assert.Nil(t, got.GroupID)
}

func testPostNotFound(t *testing.T, s *repositories.Store) {
	ctx := context.Background()
	_, err := s.Posts.GetByID(ctx, 424242)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	a := mustAuthor(t, s, "leo")
	err = s.Posts.Update(ctx, &models.Post{ID: 424242, Text: "x", AuthorID: a.ID, CreatedAt: base})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func testPostMissingReferences(t *testing.T, s *repositories.Store) {
	ctx := context.Background()
	err := s.Posts.Create(ctx, &models.Post{Text: "orphan", AuthorID: 777, CreatedAt: base})
	assert.ErrorIs(t, err, repositories.ErrConflict)

	a := mustAuthor(t, s, "leo")
	missing := 888
	err = s.Posts.Create(ctx, &models.Post{Text: "lost", AuthorID: a.ID, GroupID: &missing, CreatedAt: base})
	assert.ErrorIs(t, err, repositories.ErrConflict)

	p := mustPost(t, s, a, nil, "fine", base)
	p.GroupID = &missing
	err = s.Posts.Update(ctx, p)
	assert.ErrorIs(t, err, repositories.ErrConflict)

	all, err := s.Posts.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testPostUpdate(t *testing.T, s *repositories.Store) {
	ctx := context.Background()
	a := mustAuthor(t, s, "leo")
	g1 := mustGroup(t, s, "cats")
	g2 := mustGroup(t, s, "dogs")
	p := mustPost(t, s, a, g1, "before", base)

	p.Text = "after"
	p.SetGroup(g2)
	require.NoError(t, s.Posts.Update(ctx, p))

	got, err := s.Posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Text)
	require.NotNil(t, got.GroupID)
	assert.Equal(t, g2.ID, *got.GroupID)
	assert.True(t, base.Equal(got.CreatedAt))

	inG1, err := s.Posts.ListByGroup(ctx, g1.ID)
	require.NoError(t, err)
	assert.Empty(t, inG1)

	got.SetGroup(nil)
	require.NoError(t, s.Posts.Update(ctx, got))
	got, err = s.Posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.GroupID)
}

func testListingOrder(t *testing.T, s *repositories.Store) {
	ctx := context.Background()
	a := mustAuthor(t, s, "leo")

	oldest := mustPost(t, s, a, nil, "oldest", base)
	newest := mustPost(t, s, a, nil, "newest", base.Add(2*time.Hour))
	middle := mustPost(t, s, a, nil, "middle", base.Add(time.Hour))
	// same timestamp as middle, higher ID: comes first among the tie
	tie := mustPost(t, s, a, nil, "tie", base.Add(time.Hour))

	all, err := s.Posts.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{newest.ID, tie.ID, middle.ID, oldest.ID}, ids(all))
}

func testFilteredSubsets(t *testing.T, s *repositories.Store) {
	ctx := context.Background()
	leo := mustAuthor(t, s, "leo")
	anna := mustAuthor(t, s, "anna")
	g1 := mustGroup(t, s, "cats")
	g2 := mustGroup(t, s, "dogs")

	authors := []*models.Author{leo, anna}
	groups := []*models.Group{g1, g2, nil}
	for i := 0; i < 12; i++ {
		mustPost(t, s, authors[i%2], groups[i%3], "post", base.Add(time.Duration(i%5)*time.Minute))
	}

	all, err := s.Posts.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 12)

	subsequence := func(sub []*models.Post) bool {
		j := 0
		for _, p := range all {
			if j < len(sub) && sub[j].ID == p.ID {
				j++
			}
		}
		return j == len(sub)
	}

	byGroup, err := s.Posts.ListByGroup(ctx, g1.ID)
	require.NoError(t, err)
	assert.Len(t, byGroup, 4)
	for _, p := range byGroup {
		assert.True(t, p.InGroup(g1.ID))
	}
	assert.True(t, subsequence(byGroup), "group listing must keep the order of the full listing")

	byAuthor, err := s.Posts.ListByAuthor(ctx, anna.ID)
	require.NoError(t, err)
	assert.Len(t, byAuthor, 6)
	for _, p := range byAuthor {
		assert.Equal(t, anna.ID, p.AuthorID)
	}
	assert.True(t, subsequence(byAuthor), "author listing must keep the order of the full listing")
}

func testCountByAuthor(t *testing.T, s *repositories.Store) {
	ctx := context.Background()
	leo := mustAuthor(t, s, "leo")
	anna := mustAuthor(t, s, "anna")
	for i := 0; i < 3; i++ {
		mustPost(t, s, leo, nil, "leo", base.Add(time.Duration(i)*time.Second))
	}
	mustPost(t, s, anna, nil, "anna", base)

	n, err := s.Posts.CountByAuthor(ctx, leo.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = s.Posts.CountByAuthor(ctx, anna.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.Posts.CountByAuthor(ctx, 555)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func testEmptyListings(t *testing.T, s *repositories.Store) {
	ctx := context.Background()
	all, err := s.Posts.ListAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	g := mustGroup(t, s, "empty")
	byGroup, err := s.Posts.ListByGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.Empty(t, byGroup)
}

func testPing(t *testing.T, s *repositories.Store) {
	assert.NoError(t, s.Ping(context.Background()))
}
