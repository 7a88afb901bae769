package repositories

import (
	"context"
	"errors"
	"fmt"

	"blog/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB. Posts are
// stored as JSON under "post:<id>" with a "slug:<slug>" index pointing back
// at the id.
type BadgerPostRepository struct {
	db *badger.DB
}

var _ PostRepository = (*BadgerPostRepository)(nil)

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// Create stores a new post and assigns its ID
func (r *BadgerPostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(slugKey(post.Slug)); err == nil {
			return ErrSlugExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id

		data, err := marshalEntity(post)
		if err != nil {
			return err
		}
		if err := txn.Set(postKey(post.ID), data); err != nil {
			return err
		}
		return txn.Set(slugKey(post.Slug), encodeID(post.ID))
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var post *models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		post, err = getPost(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// GetBySlug resolves the slug index and loads the post it points to
func (r *BadgerPostRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var post *models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := lookupSlug(txn, slug)
		if err != nil {
			return err
		}
		post, err = getPost(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// ListPublished returns the newest published posts
func (r *BadgerPostRepository) ListPublished(ctx context.Context, limit int) ([]*models.Post, error) {
	published := true
	return r.List(ctx, ListParams{Published: &published, Limit: limit})
}

// List scans every post and filters in memory
func (r *BadgerPostRepository) List(ctx context.Context, params ListParams) ([]*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var all []*models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(PostKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var post models.Post
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &post)
			})
			if err != nil {
				return fmt.Errorf("failed to read post %q: %w", it.Item().Key(), err)
			}
			all = append(all, &post)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FilterPosts(all, params), nil
}

// Update replaces an existing post, moving its slug index entry if needed
func (r *BadgerPostRepository) Update(ctx context.Context, post *models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		existing, err := getPost(txn, post.ID)
		if err != nil {
			return err
		}

		if existing.Slug != post.Slug {
			owner, err := lookupSlug(txn, post.Slug)
			switch {
			case err == nil && owner != post.ID:
				return ErrSlugExists
			case err != nil && !errors.Is(err, ErrNotFound):
				return err
			}
			if err := txn.Delete(slugKey(existing.Slug)); err != nil {
				return err
			}
			if err := txn.Set(slugKey(post.Slug), encodeID(post.ID)); err != nil {
				return err
			}
		}

		data, err := marshalEntity(post)
		if err != nil {
			return err
		}
		return txn.Set(postKey(post.ID), data)
	})
}

// Delete removes a post and its slug index entry
func (r *BadgerPostRepository) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		existing, err := getPost(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(slugKey(existing.Slug)); err != nil {
			return err
		}
		return txn.Delete(postKey(id))
	})
}

// Ping reports whether the underlying database is still open
func (r *BadgerPostRepository) Ping(ctx context.Context) error {
	if r.db.IsClosed() {
		return errors.New("badger: database is closed")
	}
	return ctx.Err()
}

// Close closes the underlying database
func (r *BadgerPostRepository) Close() error {
	return r.db.Close()
}

func getPost(txn *badger.Txn, id int) (*models.Post, error) {
	item, err := txn.Get(postKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var post models.Post
	if err := item.Value(func(val []byte) error {
		return unmarshalEntity(val, &post)
	}); err != nil {
		return nil, err
	}
	return &post, nil
}

func lookupSlug(txn *badger.Txn, slug string) (int, error) {
	item, err := txn.Get(slugKey(slug))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	var id int
	err = item.Value(func(val []byte) error {
		var decodeErr error
		id, decodeErr = decodeID(val)
		return decodeErr
	})
	return id, err
}
