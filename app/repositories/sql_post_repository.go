package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"blog/app/models"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

var schemas = map[dialect][]string{
	dialectSQLite: {
		`CREATE TABLE IF NOT EXISTS posts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			author TEXT NOT NULL,
			content TEXT NOT NULL,
			published BOOLEAN NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS posts_published_created_idx ON posts (published, created_at DESC, id DESC)`,
	},
	dialectPostgres: {
		`CREATE TABLE IF NOT EXISTS posts (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			author TEXT NOT NULL,
			content TEXT NOT NULL,
			published BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS posts_published_created_idx ON posts (published, created_at DESC, id DESC)`,
	},
}

const postColumns = `id, title, slug, author, content, published, created_at, updated_at`

// SQLPostRepository implements PostRepository on database/sql. Queries are
// written with "?" placeholders and rebound for PostgreSQL.
type SQLPostRepository struct {
	db      *sql.DB
	dialect dialect
}

var _ PostRepository = (*SQLPostRepository)(nil)

// NewSQLitePostRepository wraps an open go-sqlite3 handle
func NewSQLitePostRepository(db *sql.DB) *SQLPostRepository {
	return &SQLPostRepository{db: db, dialect: dialectSQLite}
}

// NewPostgresPostRepository wraps an open lib/pq handle
func NewPostgresPostRepository(db *sql.DB) *SQLPostRepository {
	return &SQLPostRepository{db: db, dialect: dialectPostgres}
}

// Migrate creates the posts table and its listing index if they are missing
func (r *SQLPostRepository) Migrate(ctx context.Context) error {
	for _, stmt := range schemas[r.dialect] {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate posts schema: %w", err)
		}
	}
	return nil
}

func (r *SQLPostRepository) rebind(query string) string {
	if r.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// Create inserts a post and assigns its ID
func (r *SQLPostRepository) Create(ctx context.Context, post *models.Post) error {
	query := r.rebind(`INSERT INTO posts (title, slug, author, content, published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := r.db.QueryRowContext(ctx, query,
		post.Title, post.Slug, post.Author, post.Content, post.Published,
		post.CreatedAt.UTC(), post.UpdatedAt.UTC(),
	).Scan(&post.ID)
	if err != nil {
		return translateSQLError(err)
	}
	return nil
}

// GetByID retrieves a post by ID
func (r *SQLPostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(`SELECT `+postColumns+` FROM posts WHERE id = ?`), id)
	return scanPost(row)
}

// GetBySlug retrieves a post by slug
func (r *SQLPostRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(`SELECT `+postColumns+` FROM posts WHERE slug = ?`), slug)
	return scanPost(row)
}

// ListPublished returns the newest published posts
func (r *SQLPostRepository) ListPublished(ctx context.Context, limit int) ([]*models.Post, error) {
	published := true
	return r.List(ctx, ListParams{Published: &published, Limit: limit})
}

// List pushes the admin filters down into a single query
func (r *SQLPostRepository) List(ctx context.Context, params ListParams) ([]*models.Post, error) {
	var (
		where []string
		args  []any
	)
	if params.Published != nil {
		where = append(where, "published = ?")
		args = append(args, *params.Published)
	}
	if from, to, ok := params.CreatedRange(); ok {
		where = append(where, "created_at >= ? AND created_at < ?")
		args = append(args, from, to)
	}
	if params.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(params.Search)) + "%"
		where = append(where, `(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	query := `SELECT ` + postColumns + ` FROM posts`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if params.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, params.Limit)
	}

	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// Update rewrites the mutable columns of a post
func (r *SQLPostRepository) Update(ctx context.Context, post *models.Post) error {
	query := r.rebind(`UPDATE posts SET title = ?, slug = ?, author = ?, content = ?, published = ?, updated_at = ?
		WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query,
		post.Title, post.Slug, post.Author, post.Content, post.Published, post.UpdatedAt.UTC(), post.ID,
	)
	if err != nil {
		return translateSQLError(err)
	}
	return expectOneRow(res)
}

// Delete deletes a post by ID
func (r *SQLPostRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM posts WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// Ping checks the database connection
func (r *SQLPostRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database handle
func (r *SQLPostRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var post models.Post
	err := row.Scan(
		&post.ID, &post.Title, &post.Slug, &post.Author, &post.Content,
		&post.Published, &post.CreatedAt, &post.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan post: %w", err)
	}
	post.CreatedAt = post.CreatedAt.UTC()
	post.UpdatedAt = post.UpdatedAt.UTC()
	return &post, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// translateSQLError maps driver unique violations onto ErrSlugExists; slug is
// the only unique column besides the primary key.
func translateSQLError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrSlugExists
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrSlugExists
	}
	return err
}
