package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"postboard/app/models"
	"postboard/app/repositories"
)

// AuthorService manages authors.
type AuthorService struct {
	repo repositories.AuthorRepository
	log  zerolog.Logger
}

func NewAuthorService(repo repositories.AuthorRepository, logger zerolog.Logger) *AuthorService {
	return &AuthorService{repo: repo, log: componentLogger(logger, "author")}
}

// CreateAuthor registers username. A taken username yields
// repositories.ErrAlreadyExists.
func (s *AuthorService) CreateAuthor(ctx context.Context, username string) (*models.Author, error) {
	a := &models.Author{Username: strings.TrimSpace(username)}
	a.BeforeCreate()
	if err := a.Validate(); err != nil {
		ferrs := fieldErrors(err, "username")
		s.log.Debug().Str("username_raw", username).Interface("field_errors", ferrs).Msg("author validation failed")
		return nil, newInvalidInput(ferrs)
	}
	if err := s.repo.Create(ctx, a); err != nil {
		s.log.Warn().Err(err).Str("username", a.Username).Msg("create author failed")
		return nil, fmt.Errorf("author %q: %w", a.Username, err)
	}
	s.log.Info().Int("author_id", a.ID).Str("username", a.Username).Msg("author created")
	return a, nil
}

func (s *AuthorService) GetAuthor(ctx context.Context, username string) (*models.Author, error) {
	a, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("author %q: %w", username, err)
	}
	return a, nil
}

func (s *AuthorService) ListAuthors(ctx context.Context) ([]*models.Author, error) {
	authors, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("list authors failed")
		return nil, err
	}
	return authors, nil
}
