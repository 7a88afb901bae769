package repositories

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"blog/app/models"

	"github.com/dgraph-io/badger/v4"
)

const (
	// Key prefixes for the badger store
	PostKeyPrefix = "post:"
	SlugKeyPrefix = "slug:"

	// Sequence key for auto-incrementing post IDs
	PostSeqKey = "seq:post"
)

func postKey(id int) []byte {
	return []byte(fmt.Sprintf("%s%d", PostKeyPrefix, id))
}

func slugKey(slug string) []byte {
	return []byte(SlugKeyPrefix + slug)
}

func encodeID(id int) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

func decodeID(b []byte) (int, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("invalid id encoding of length %d", len(b))
	}
	return int(binary.BigEndian.Uint64(b)), nil
}

// getNextID gets the next available ID for a given sequence key
func getNextID(txn *badger.Txn, seqKey string) (int, error) {
	id := 1
	item, err := txn.Get([]byte(seqKey))
	switch {
	case err == badger.ErrKeyNotFound:
	case err != nil:
		return 0, err
	default:
		err = item.Value(func(val []byte) error {
			last, err := decodeID(val)
			if err != nil {
				return err
			}
			id = last + 1
			return nil
		})
		if err != nil {
			return 0, err
		}
	}

	if err := txn.Set([]byte(seqKey), encodeID(id)); err != nil {
		return 0, err
	}
	return id, nil
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// Matches applies the list filters to a single post. Stores that cannot push
// filtering down to a query engine use it directly.
func (p ListParams) Matches(post *models.Post) bool {
	if p.Published != nil && post.Published != *p.Published {
		return false
	}
	if from, to, ok := p.CreatedRange(); ok {
		created := post.CreatedAt.UTC()
		if created.Before(from) || !created.Before(to) {
			return false
		}
	}
	if p.Search != "" {
		q := strings.ToLower(p.Search)
		if !strings.Contains(strings.ToLower(post.Title), q) &&
			!strings.Contains(strings.ToLower(post.Content), q) {
			return false
		}
	}
	return true
}

// SortNewestFirst orders posts by creation time descending, breaking ties on
// the higher ID so equal timestamps still give a stable order.
func SortNewestFirst(posts []*models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
}

// FilterPosts applies params to an unordered set and returns the ordered,
// limited result.
func FilterPosts(all []*models.Post, params ListParams) []*models.Post {
	out := make([]*models.Post, 0, len(all))
	for _, post := range all {
		if params.Matches(post) {
			out = append(out, post)
		}
	}
	SortNewestFirst(out)
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out
}
