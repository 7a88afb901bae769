package models

import "time"

// Post represents a blog entry. Posts are written through the admin surface
// and read on the public index.
type Post struct {
	ID        int       `json:"id" validate:"gte=0"`
	Title     string    `json:"title" validate:"required,max=200"`
	Slug      string    `json:"slug" validate:"required,max=200,slug"`
	Author    string    `json:"author" validate:"required,max=100"`
	Content   string    `json:"content" validate:"required"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at" validate:"required"`
	UpdatedAt time.Time `json:"updated_at"`
}
