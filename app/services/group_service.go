package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"postboard/app/models"
	"postboard/app/repositories"
)

// GroupService manages topic groups.
type GroupService struct {
	repo repositories.GroupRepository
	log  zerolog.Logger
}

func NewGroupService(repo repositories.GroupRepository, logger zerolog.Logger) *GroupService {
	return &GroupService{repo: repo, log: componentLogger(logger, "group")}
}

// CreateGroup validates and stores g. A taken slug yields
// repositories.ErrAlreadyExists.
func (s *GroupService) CreateGroup(ctx context.Context, g models.Group) (*models.Group, error) {
	g.ID = 0
	g.Title = strings.TrimSpace(g.Title)
	g.Slug = strings.TrimSpace(g.Slug)
	g.Description = strings.TrimSpace(g.Description)

	if err := g.Validate(); err != nil {
		ferrs := fieldErrors(err, "group")
		s.log.Debug().Interface("field_errors", ferrs).Msg("group validation failed")
		return nil, newInvalidInput(ferrs)
	}
	if err := s.repo.Create(ctx, &g); err != nil {
		s.log.Warn().Err(err).Str("slug", g.Slug).Msg("create group failed")
		return nil, fmt.Errorf("group %q: %w", g.Slug, err)
	}
	s.log.Info().Int("group_id", g.ID).Str("slug", g.Slug).Msg("group created")
	return &g, nil
}

func (s *GroupService) GetGroup(ctx context.Context, slug string) (*models.Group, error) {
	g, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("group %q: %w", slug, err)
	}
	return g, nil
}

// ListGroups returns every group in creation order.
func (s *GroupService) ListGroups(ctx context.Context) ([]*models.Group, error) {
	groups, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("list groups failed")
		return nil, err
	}
	return groups, nil
}
