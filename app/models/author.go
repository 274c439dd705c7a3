package models

import (
	"errors"
	"time"
)

// Validate checks if the author meets all validation requirements
func (a *Author) Validate() error {
	if err := validate.Struct(a); err != nil {
		return err
	}

	if a.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	return nil
}

// BeforeCreate stamps the creation time if it is missing.
func (a *Author) BeforeCreate() {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
}
