package models

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Post is a text entry written by exactly one author, optionally filed under a group.
type Post struct {
	ID        int       `json:"id" validate:"gte=0"`
	Text      string    `json:"text" validate:"required,notblank"`
	CreatedAt time.Time `json:"created_at" validate:"required"`
	AuthorID  int       `json:"author_id" validate:"required,gt=0"`
	GroupID   *int      `json:"group_id" validate:"omitempty,gt=0"`
}

// Group is a topic category. Slug is the stable identifier used in URLs.
type Group struct {
	ID          int    `json:"id" validate:"gte=0"`
	Title       string `json:"title" validate:"required,notblank,max=200"`
	Slug        string `json:"slug" validate:"required,max=50,slug"`
	Description string `json:"description"`
}

// Author is the identity that owns posts.
type Author struct {
	ID        int       `json:"id" validate:"gte=0"`
	Username  string    `json:"username" validate:"required,max=150,username"`
	CreatedAt time.Time `json:"created_at" validate:"required"`
}

var (
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidateStruct checks v against its validate tags with the shared rules
// (notblank, slug, username).
func ValidateStruct(v interface{}) error {
	return validate.Struct(v)
}
