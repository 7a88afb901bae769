package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPost() *Post {
	return &Post{
		ID:        1,
		Title:     "Valid Title",
		Slug:      "valid-title",
		Author:    "alice",
		Content:   "Some content",
		CreatedAt: time.Now(),
	}
}

func TestPostValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Post)
		wantErr bool
	}{
		{name: "valid post", mutate: func(p *Post) {}},
		{name: "missing title", mutate: func(p *Post) { p.Title = "" }, wantErr: true},
		{name: "missing author", mutate: func(p *Post) { p.Author = "" }, wantErr: true},
		{name: "missing content", mutate: func(p *Post) { p.Content = "" }, wantErr: true},
		{name: "bad slug", mutate: func(p *Post) { p.Slug = "Not A Slug" }, wantErr: true},
		{name: "double dash slug", mutate: func(p *Post) { p.Slug = "a--b" }, wantErr: true},
		{name: "zero creation time", mutate: func(p *Post) { p.CreatedAt = time.Time{} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPost()
			tt.mutate(p)
			err := p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFieldErrors(t *testing.T) {
	p := validPost()
	p.Title = ""
	p.Slug = "Bad Slug"

	errs := FieldErrors(p.Validate())
	require.Len(t, errs, 2)
	assert.Equal(t, "is required", errs["title"])
	assert.Contains(t, errs["slug"], "lowercase")

	assert.Nil(t, FieldErrors(nil))
}

func TestPostBeforeCreate(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	post := &Post{Title: "Hello World", Content: "Test Content"}

	post.BeforeCreate(now)

	assert.Equal(t, "hello-world", post.Slug)
	assert.Equal(t, now, post.CreatedAt)
	assert.Equal(t, now, post.UpdatedAt)

	post.Slug = "custom"
	post.BeforeCreate(now.Add(time.Hour))
	assert.Equal(t, "custom", post.Slug)
	assert.Equal(t, now, post.CreatedAt)
}

func TestPostBeforeUpdate(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	existing := &Post{ID: 3, CreatedAt: created}
	now := created.Add(48 * time.Hour)

	post := &Post{ID: 3, Title: "Renamed"}
	post.BeforeUpdate(existing, now)

	assert.Equal(t, created, post.CreatedAt)
	assert.Equal(t, now, post.UpdatedAt)
	assert.Equal(t, "renamed", post.Slug)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Hello World":             "hello-world",
		"  Leading and trailing ": "leading-and-trailing",
		"Crème Brûlée à la carte": "creme-brulee-a-la-carte",
		"Go 1.23: what's new?":    "go-123-whats-new",
		"snake_case and-dashes":   "snake-case-and-dashes",
		"multiple   spaces":       "multiple-spaces",
		"日本語":                     "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), "Slugify(%q)", in)
	}
}
