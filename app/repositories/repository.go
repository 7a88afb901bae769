package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrSlugExists = errors.New("slug already exists")
)

// Supported storage drivers
const (
	DriverBadger   = "badger"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects and locates the post store.
type Options struct {
	Driver string
	// Path is the badger directory or the SQLite file.
	Path string
	// DSN is the PostgreSQL connection string.
	DSN string
}

// Open connects to the configured store and makes sure its schema exists.
func Open(ctx context.Context, opts Options) (PostRepository, error) {
	switch opts.Driver {
	case "", DriverBadger:
		if err := os.MkdirAll(opts.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create badger directory: %w", err)
		}
		db, err := badger.Open(badger.DefaultOptions(opts.Path).WithLogger(nil))
		if err != nil {
			return nil, fmt.Errorf("open badger: %w", err)
		}
		return NewBadgerPostRepository(db), nil

	case DriverSQLite:
		if dir := filepath.Dir(opts.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
		db, err := openSQL(ctx, "sqlite3", opts.Path)
		if err != nil {
			return nil, err
		}
		// go-sqlite3 serialises writers; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		return migrated(ctx, NewSQLitePostRepository(db))

	case DriverPostgres:
		if opts.DSN == "" {
			return nil, errors.New("postgres driver requires a DSN")
		}
		db, err := openSQL(ctx, "postgres", opts.DSN)
		if err != nil {
			return nil, err
		}
		return migrated(ctx, NewPostgresPostRepository(db))
	}
	return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
}

func openSQL(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

func migrated(ctx context.Context, repo *SQLPostRepository) (PostRepository, error) {
	if err := repo.Migrate(ctx); err != nil {
		repo.Close()
		return nil, err
	}
	return repo, nil
}
