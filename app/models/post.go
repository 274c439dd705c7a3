package models

import (
	"errors"
	"time"
)

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
}

// SetGroup files the post under group, or clears the group when group is nil.
func (p *Post) SetGroup(group *Group) {
	if group == nil {
		p.GroupID = nil
		return
	}
	id := group.ID
	p.GroupID = &id
}

// InGroup reports whether the post is filed under the group with the given ID.
func (p *Post) InGroup(groupID int) bool {
	return p.GroupID != nil && *p.GroupID == groupID
}

// SetAuthor assigns the owning author.
func (p *Post) SetAuthor(author *Author) error {
	if author == nil {
		return errors.New("author cannot be nil")
	}
	p.AuthorID = author.ID
	return nil
}
