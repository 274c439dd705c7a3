// Package services holds the use cases: listings, post authoring, groups
// and authors. Only validation and orchestration live here, no transport or
// storage details.
package services

import (
	"github.com/rs/zerolog"

	"postboard/app/repositories"
)

// Services bundles every use case over one store.
type Services struct {
	Listing *ListingService
	Posts   *PostService
	Groups  *GroupService
	Authors *AuthorService
}

func New(store *repositories.Store, logger zerolog.Logger) *Services {
	return &Services{
		Listing: NewListingService(store.Posts, store.Groups, store.Authors, logger),
		Posts:   NewPostService(store.Posts, store.Groups, store.Authors, logger),
		Groups:  NewGroupService(store.Groups, logger),
		Authors: NewAuthorService(store.Authors, logger),
	}
}

func componentLogger(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("module", "service").Str("component", component).Logger()
}
