package repositories

import (
	"context"
	"time"

	"blog/app/models"
)

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id int) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	// ListPublished returns at most limit published posts, newest first.
	ListPublished(ctx context.Context, limit int) ([]*models.Post, error)
	List(ctx context.Context, params ListParams) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id int) error
	Ping(ctx context.Context) error
	Close() error
}

// ListParams narrows an admin listing. Zero values mean "no filter".
type ListParams struct {
	Published *bool
	Year      int
	Month     int
	Day       int
	Search    string
	Limit     int
}

// CreatedRange converts the date drill-down into a half-open UTC interval.
// Month is ignored without Year, Day without Month.
func (p ListParams) CreatedRange() (from, to time.Time, ok bool) {
	if p.Year <= 0 {
		return time.Time{}, time.Time{}, false
	}
	if p.Month < 1 || p.Month > 12 {
		from = time.Date(p.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(1, 0, 0), true
	}
	if p.Day < 1 || p.Day > 31 {
		from = time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 1, 0), true
	}
	from = time.Date(p.Year, time.Month(p.Month), p.Day, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 1), true
}
