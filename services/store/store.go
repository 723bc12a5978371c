// Package store persists syndicated posts in a local SQLite file and reports
// which posts of a batch were seen for the first time.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"sjsage522/blogsyndicator/internal/post"
	"sjsage522/blogsyndicator/logger"
	apperrors "sjsage522/blogsyndicator/pkg/errors"
)

const provider = "sqlite"

const createTableQuery = `
	CREATE TABLE IF NOT EXISTS posts (
		id    INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		link  TEXT NOT NULL,
		UNIQUE (title, link)
	)`

// InsertResult tells whether a post was stored or already present
type InsertResult int

const (
	// Inserted means the post was new and is now stored
	Inserted InsertResult = iota
	// SkippedDuplicate means the (title, link) pair was already stored
	SkippedDuplicate
)

func (r InsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case SkippedDuplicate:
		return "skipped_duplicate"
	default:
		return fmt.Sprintf("InsertResult(%d)", int(r))
	}
}

// Publisher receives each newly inserted post
type Publisher interface {
	Publish(ctx context.Context, p post.Post) error
}

// Store is the deduplicating post store
type Store interface {
	// Exists reports whether the posts table has been created
	Exists(ctx context.Context) (bool, error)
	// EnsureSchema creates the posts table; purge drops it first
	EnsureSchema(ctx context.Context, purge bool) error
	// Insert stores one post unless the pair is already present
	Insert(ctx context.Context, p post.Post) (InsertResult, error)
	// InsertNew stores posts in order and returns the ones that were new
	InsertNew(ctx context.Context, posts []post.Post, pub Publisher) ([]post.Post, error)
	// ListAll returns every stored post in insertion order
	ListAll(ctx context.Context) ([]post.Post, error)
	// Count returns the number of stored posts
	Count(ctx context.Context) (int, error)
	// Close closes the database
	Close() error
}

// SQLiteStore implements Store on a single SQLite file
type SQLiteStore struct {
	db  *sqlx.DB
	log *logger.Logger
}

var _ Store = (*SQLiteStore)(nil)

// Open opens (creating if needed) the SQLite file at path
func Open(path string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, apperrors.NewStorage(provider, fmt.Sprintf("failed to open %s", path), err)
	}

	// One writer, one process
	db.SetMaxOpenConns(1)

	return NewSQLiteStore(db), nil
}

// NewSQLiteStore wraps an existing connection
func NewSQLiteStore(db *sqlx.DB) *SQLiteStore {
	return &SQLiteStore{
		db:  db,
		log: logger.ForStore(),
	}
}

// Exists reports whether the posts table exists
func (s *SQLiteStore) Exists(ctx context.Context) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
	if err := s.db.GetContext(ctx, &count, query, "posts"); err != nil {
		return false, apperrors.NewStorage(provider, "failed to inspect schema", err)
	}
	return count > 0, nil
}

// EnsureSchema creates the posts table if it does not exist. With purge the
// table and all its rows are dropped first.
func (s *SQLiteStore) EnsureSchema(ctx context.Context, purge bool) error {
	if purge {
		if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS posts`); err != nil {
			return apperrors.NewStorage(provider, "failed to drop posts table", err)
		}
		s.log.Warn().Msg("Posts table purged")
	}

	if _, err := s.db.ExecContext(ctx, createTableQuery); err != nil {
		return apperrors.NewStorage(provider, "failed to create posts table", err)
	}

	return nil
}

// Insert stores p. A (title, link) pair that is already stored is reported as
// SkippedDuplicate, not as an error.
func (s *SQLiteStore) Insert(ctx context.Context, p post.Post) (InsertResult, error) {
	query := `INSERT INTO posts (title, link) VALUES (?, ?) ON CONFLICT (title, link) DO NOTHING`

	result, err := s.db.ExecContext(ctx, query, p.Title, p.Link)
	if err != nil {
		return 0, apperrors.NewStorage(provider, "failed to insert post", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.NewStorage(provider, "failed to read affected rows", err)
	}
	if rows == 0 {
		return SkippedDuplicate, nil
	}

	return Inserted, nil
}

// InsertNew inserts posts in the given order and returns those that were new.
// When pub is set each new post is published right after its insert; a failed
// publish is logged and the batch goes on, unless the context is done.
func (s *SQLiteStore) InsertNew(ctx context.Context, posts []post.Post, pub Publisher) ([]post.Post, error) {
	inserted := make([]post.Post, 0, len(posts))
	skipped := 0

	for _, p := range posts {
		result, err := s.Insert(ctx, p)
		if err != nil {
			return inserted, err
		}

		if result == SkippedDuplicate {
			skipped++
			s.log.Debug().Str("title", p.Title).Msg("Duplicate, skipping")
			continue
		}

		inserted = append(inserted, p)
		s.log.Debug().Str("title", p.Title).Str("link", p.Link).Msg("Stored post")

		if pub == nil {
			continue
		}
		if err := pub.Publish(ctx, p); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return inserted, err
			}
			s.log.Error().Err(err).Str("title", p.Title).Msg("Failed to publish post")
		}
	}

	s.log.Info().
		Int("inserted", len(inserted)).
		Int("skipped", skipped).
		Msg("Stored new posts")

	return inserted, nil
}

// ListAll returns every stored post ordered by insertion
func (s *SQLiteStore) ListAll(ctx context.Context) ([]post.Post, error) {
	var posts []post.Post
	if err := s.db.SelectContext(ctx, &posts, `SELECT title, link FROM posts ORDER BY id`); err != nil {
		return nil, apperrors.NewStorage(provider, "failed to list posts", err)
	}

	if posts == nil {
		posts = []post.Post{}
	}

	return posts, nil
}

// Count returns the number of stored posts
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM posts`); err != nil {
		return 0, apperrors.NewStorage(provider, "failed to count posts", err)
	}
	return count, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
