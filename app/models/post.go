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

// BeforeCreate fills in the slug and timestamps of a new post.
func (p *Post) BeforeCreate(now time.Time) {
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

// BeforeUpdate keeps the original creation time and refreshes UpdatedAt.
func (p *Post) BeforeUpdate(existing *Post, now time.Time) {
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = now
}

// IsVisible reports whether the post may be shown on the public site.
func (p *Post) IsVisible() bool {
	return p != nil && p.Published
}
