package repositories

import (
	"context"

	"postboard/app/models"
)

// PostRepository defines the interface for post data access.
//
// Every List* method returns posts newest first (CreatedAt descending,
// then ID descending). Filtered listings keep the relative order of
// ListAll.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id int) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	ListAll(ctx context.Context) ([]*models.Post, error)
	ListByGroup(ctx context.Context, groupID int) ([]*models.Post, error)
	ListByAuthor(ctx context.Context, authorID int) ([]*models.Post, error)
	CountByAuthor(ctx context.Context, authorID int) (int, error)
}

// GroupRepository defines the interface for group data access
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id int) (*models.Group, error)
	GetBySlug(ctx context.Context, slug string) (*models.Group, error)
	List(ctx context.Context) ([]*models.Group, error)
}

// AuthorRepository defines the interface for author data access
type AuthorRepository interface {
	Create(ctx context.Context, author *models.Author) error
	GetByID(ctx context.Context, id int) (*models.Author, error)
	GetByUsername(ctx context.Context, username string) (*models.Author, error)
	List(ctx context.Context) ([]*models.Author, error)
}

// Pinger is a readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}
