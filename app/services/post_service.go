package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"postboard/app/models"
	"postboard/app/repositories"
)

// PostInput is what a client submits to create or edit a post. Author is
// the username of the writer; it is ignored on edit.
type PostInput struct {
	Author  string `json:"author"`
	Text    string `json:"text" validate:"required,notblank"`
	GroupID *int   `json:"group" validate:"omitempty,gt=0"`
}

// PostDetail is a single post with its author and how many posts that
// author has written.
type PostDetail struct {
	Post      *models.Post
	Author    *models.Author
	PostCount int
}

// PostService handles writing and reading single posts.
type PostService struct {
	posts   repositories.PostRepository
	groups  repositories.GroupRepository
	authors repositories.AuthorRepository
	log     zerolog.Logger
}

func NewPostService(posts repositories.PostRepository, groups repositories.GroupRepository,
	authors repositories.AuthorRepository, logger zerolog.Logger) *PostService {
	return &PostService{
		posts:   posts,
		groups:  groups,
		authors: authors,
		log:     componentLogger(logger, "post"),
	}
}

// CreatePost validates in, resolves the author and group and stores a new
// post stamped with the current time.
func (s *PostService) CreatePost(ctx context.Context, in PostInput) (*models.Post, error) {
	start := time.Now()
	in.Author = strings.TrimSpace(in.Author)
	in.Text = strings.TrimSpace(in.Text)

	ferrs := fieldErrors(models.ValidateStruct(&in), "text")
	var author *models.Author
	if in.Author == "" {
		ferrs = append(ferrs, FieldError{Field: "author", Message: "must not be empty"})
	} else {
		a, err := s.authors.GetByUsername(ctx, in.Author)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			ferrs = append(ferrs, FieldError{Field: "author", Message: "unknown author"})
		case err != nil:
			return nil, err
		default:
			author = a
		}
	}
	groupErrs, err := s.checkGroup(ctx, in.GroupID)
	if err != nil {
		return nil, err
	}
	ferrs = append(ferrs, groupErrs...)
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("post validation failed")
		return nil, err
	}

	post := &models.Post{Text: in.Text, GroupID: in.GroupID}
	if err := post.SetAuthor(author); err != nil {
		return nil, err
	}
	post.BeforeCreate()
	if err := post.Validate(); err != nil {
		return nil, newInvalidInput(fieldErrors(err, "post"))
	}

	if err := s.posts.Create(ctx, post); err != nil {
		s.log.Error().Err(err).Str("author", in.Author).Msg("create post failed")
		return nil, err
	}
	s.log.Info().Dur("took", time.Since(start)).Int("post_id", post.ID).Str("author", in.Author).Msg("post created")
	return post, nil
}

// UpdatePost replaces the text and group of post id. Author and creation
// time never change.
func (s *PostService) UpdatePost(ctx context.Context, id int, in PostInput) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("post %d: %w", id, err)
	}

	in.Text = strings.TrimSpace(in.Text)
	ferrs := fieldErrors(models.ValidateStruct(&in), "text")
	groupErrs, err := s.checkGroup(ctx, in.GroupID)
	if err != nil {
		return nil, err
	}
	ferrs = append(ferrs, groupErrs...)
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Int("post_id", id).Interface("field_errors", ferrs).Msg("post validation failed")
		return nil, err
	}

	post.Text = in.Text
	post.GroupID = in.GroupID
	if err := post.Validate(); err != nil {
		return nil, newInvalidInput(fieldErrors(err, "post"))
	}
	if err := s.posts.Update(ctx, post); err != nil {
		s.log.Error().Err(err).Int("post_id", id).Msg("update post failed")
		return nil, err
	}
	s.log.Info().Int("post_id", id).Msg("post updated")
	return post, nil
}

// GetPost returns the post with its author and the author's post count.
func (s *PostService) GetPost(ctx context.Context, id int) (*PostDetail, error) {
	if id <= 0 {
		return nil, fmt.Errorf("post %d: %w", id, repositories.ErrNotFound)
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("post %d: %w", id, err)
	}
	author, err := s.authors.GetByID(ctx, post.AuthorID)
	if err != nil {
		s.log.Error().Err(err).Int("post_id", id).Int("author_id", post.AuthorID).Msg("post author lookup failed")
		return nil, err
	}
	count, err := s.posts.CountByAuthor(ctx, author.ID)
	if err != nil {
		return nil, err
	}
	return &PostDetail{Post: post, Author: author, PostCount: count}, nil
}

func (s *PostService) checkGroup(ctx context.Context, groupID *int) ([]FieldError, error) {
	if groupID == nil || *groupID <= 0 {
		return nil, nil
	}
	_, err := s.groups.GetByID(ctx, *groupID)
	if errors.Is(err, repositories.ErrNotFound) {
		return []FieldError{{Field: "group", Message: "unknown group"}}, nil
	}
	return nil, err
}
