package mock

import (
	"context"
	"sync"

	"blog/app/models"
	"blog/app/repositories"
)

// PostRepository is an in-memory PostRepository for controller and service
// tests. Err, when set, is returned from every call.
type PostRepository struct {
	posts  map[int]*models.Post
	nextID int
	mutex  sync.RWMutex

	Err error
}

var _ repositories.PostRepository = (*PostRepository)(nil)

func NewPostRepository() *PostRepository {
	return &PostRepository{
		posts:  make(map[int]*models.Post),
		nextID: 1,
	}
}

func (m *PostRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = make(map[int]*models.Post)
	m.nextID = 1
}

// Seed stores posts as-is, keeping any ID already set.
func (m *PostRepository) Seed(posts ...*models.Post) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, p := range posts {
		if p.ID == 0 {
			p.ID = m.nextID
		}
		if p.ID >= m.nextID {
			m.nextID = p.ID + 1
		}
		cp := *p
		m.posts[p.ID] = &cp
	}
}

func (m *PostRepository) Create(ctx context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.slugTaken(post.Slug, 0) {
		return repositories.ErrSlugExists
	}

	post.ID = m.nextID
	m.nextID++
	cp := *post
	m.posts[post.ID] = &cp
	return nil
}

func (m *PostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	cp := *post
	return &cp, nil
}

func (m *PostRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	for _, post := range m.posts {
		if post.Slug == slug {
			cp := *post
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *PostRepository) ListPublished(ctx context.Context, limit int) ([]*models.Post, error) {
	published := true
	return m.List(ctx, repositories.ListParams{Published: &published, Limit: limit})
}

func (m *PostRepository) List(ctx context.Context, params repositories.ListParams) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	all := make([]*models.Post, 0, len(m.posts))
	for _, post := range m.posts {
		cp := *post
		all = append(all, &cp)
	}
	return repositories.FilterPosts(all, params), nil
}

func (m *PostRepository) Update(ctx context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if _, exists := m.posts[post.ID]; !exists {
		return repositories.ErrNotFound
	}
	if m.slugTaken(post.Slug, post.ID) {
		return repositories.ErrSlugExists
	}
	cp := *post
	m.posts[post.ID] = &cp
	return nil
}

func (m *PostRepository) Delete(ctx context.Context, id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *PostRepository) Ping(ctx context.Context) error {
	return m.Err
}

func (m *PostRepository) Close() error {
	return nil
}

func (m *PostRepository) slugTaken(slug string, except int) bool {
	for id, post := range m.posts {
		if id != except && post.Slug == slug {
			return true
		}
	}
	return false
}
