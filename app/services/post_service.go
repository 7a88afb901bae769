package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"blog/app/events"
	"blog/app/models"
	"blog/app/repositories"
)

// ErrInvalidLimit is returned when a listing is asked for fewer than one post.
var ErrInvalidLimit = errors.New("limit must be a positive integer")

// ErrInvalidPost wraps validation failures from CreatePost and UpdatePost.
var ErrInvalidPost = errors.New("invalid post")

// PostService handles business logic for blog posts
type PostService struct {
	postRepo  repositories.PostRepository
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewPostService creates a new PostService. A nil publisher disables
// post-published events; a nil logger discards output.
func NewPostService(postRepo repositories.PostRepository, publisher events.Publisher, logger *slog.Logger) *PostService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PostService{
		postRepo:  postRepo,
		publisher: publisher,
		logger:    logger,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
}

// ListRecentPublished returns at most limit published posts, newest first.
// An empty result is not an error.
func (s *PostService) ListRecentPublished(ctx context.Context, limit int) ([]*models.Post, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}
	posts, err := s.postRepo.ListPublished(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list published posts: %w", err)
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return posts, nil
}

// GetPublishedBySlug returns a post for the public site. Drafts are reported
// as missing.
func (s *PostService) GetPublishedBySlug(ctx context.Context, slug string) (*models.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !post.IsVisible() {
		return nil, repositories.ErrNotFound
	}
	return post, nil
}

// CreatePost derives the slug if needed, validates and stores a new post
func (s *PostService) CreatePost(ctx context.Context, post *models.Post) error {
	post.BeforeCreate(s.now())

	if err := post.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPost, err)
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return err
	}

	if post.Published {
		s.announce(ctx, post)
	}
	return nil
}

// GetPost retrieves a post by ID regardless of its published state
func (s *PostService) GetPost(ctx context.Context, id int) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// ListPosts returns the admin listing for params
func (s *PostService) ListPosts(ctx context.Context, params repositories.ListParams) ([]*models.Post, error) {
	return s.postRepo.List(ctx, params)
}

// UpdatePost updates an existing post with validation. The creation time is
// never changed by an edit.
func (s *PostService) UpdatePost(ctx context.Context, post *models.Post) error {
	existing, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return err
	}

	post.BeforeUpdate(existing, s.now())

	if err := post.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPost, err)
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return err
	}

	if post.Published && !existing.Published {
		s.announce(ctx, post)
	}
	return nil
}

// DeletePost deletes a post
func (s *PostService) DeletePost(ctx context.Context, id int) error {
	return s.postRepo.Delete(ctx, id)
}

// announce publishes the post-published event. Broker failures are logged
// and never undo the write.
func (s *PostService) announce(ctx context.Context, post *models.Post) {
	e := events.NewPostPublished(post.ID, post.Slug, post.Title, s.now())
	if err := s.publisher.PublishPostPublished(ctx, e); err != nil {
		s.logger.Warn("publish post.published failed", "post_id", post.ID, "error", err)
	}
}

// DateBucket is one entry of a date drill-down: a year, month or day with the
// number of posts created in it.
type DateBucket struct {
	Year  int
	Month int
	Day   int
	Label string
	Count int
}

// DateHierarchy describes the next level of the created-date drill-down for
// the current filter.
type DateHierarchy struct {
	// Level is the granularity of Buckets: "year", "month" or "day".
	Level   string
	Buckets []DateBucket
}

// DateHierarchy groups the posts matching params (ignoring any date filter
// finer than the current level) by year, month or day.
func (s *PostService) DateHierarchy(ctx context.Context, params repositories.ListParams) (*DateHierarchy, error) {
	level := "year"
	switch {
	case params.Year > 0 && params.Month >= 1 && params.Month <= 12:
		level = "day"
		params.Day = 0
	case params.Year > 0:
		level = "month"
		params.Month, params.Day = 0, 0
	default:
		params.Month, params.Day = 0, 0
	}
	params.Limit = 0

	posts, err := s.postRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	counts := make(map[DateBucket]int)
	for _, p := range posts {
		c := p.CreatedAt.UTC()
		key := DateBucket{Year: c.Year()}
		switch level {
		case "month":
			key.Month = int(c.Month())
			key.Label = c.Format("January 2006")
		case "day":
			key.Month = int(c.Month())
			key.Day = c.Day()
			key.Label = c.Format("January 2")
		default:
			key.Label = c.Format("2006")
		}
		counts[key]++
	}

	h := &DateHierarchy{Level: level, Buckets: make([]DateBucket, 0, len(counts))}
	for key, n := range counts {
		key.Count = n
		h.Buckets = append(h.Buckets, key)
	}
	sort.Slice(h.Buckets, func(i, j int) bool {
		a, b := h.Buckets[i], h.Buckets[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		return a.Day < b.Day
	})
	return h, nil
}
