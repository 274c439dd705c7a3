package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"postboard/app/models"
	"postboard/app/repositories"
)

// ListingService answers the three post listings. Every listing comes back
// newest first; filtered listings keep the relative order of ListAll.
type ListingService struct {
	posts   repositories.PostRepository
	groups  repositories.GroupRepository
	authors repositories.AuthorRepository
	log     zerolog.Logger
}

func NewListingService(posts repositories.PostRepository, groups repositories.GroupRepository,
	authors repositories.AuthorRepository, logger zerolog.Logger) *ListingService {
	return &ListingService{
		posts:   posts,
		groups:  groups,
		authors: authors,
		log:     componentLogger(logger, "listing"),
	}
}

// ListAll returns every post.
func (s *ListingService) ListAll(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.posts.ListAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("list all posts failed")
		return nil, err
	}
	return posts, nil
}

// ListByGroup resolves the group by slug and returns it with its posts.
func (s *ListingService) ListByGroup(ctx context.Context, slug string) (*models.Group, []*models.Post, error) {
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, fmt.Errorf("group %q: %w", slug, err)
	}
	posts, err := s.posts.ListByGroup(ctx, group.ID)
	if err != nil {
		s.log.Error().Err(err).Str("slug", slug).Msg("list group posts failed")
		return nil, nil, err
	}
	s.log.Debug().Str("slug", slug).Int("posts", len(posts)).Msg("group listing")
	return group, posts, nil
}

// ListByAuthor resolves the author by username and returns them with their
// posts and the number of those posts.
func (s *ListingService) ListByAuthor(ctx context.Context, username string) (*models.Author, []*models.Post, int, error) {
	author, err := s.authors.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("author %q: %w", username, err)
	}
	posts, err := s.posts.ListByAuthor(ctx, author.ID)
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("list author posts failed")
		return nil, nil, 0, err
	}
	s.log.Debug().Str("username", username).Int("posts", len(posts)).Msg("author listing")
	return author, posts, len(posts), nil
}
