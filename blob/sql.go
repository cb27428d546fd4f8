package blob

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/awantoch/formrelay/logger"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const sqlURLPrefix = "db://"

// SQLBlobStore implements BlobStore on a SQL table. It backs the sqlite and
// postgres archive drivers.
type SQLBlobStore struct {
	db     *sql.DB
	driver string
}

var _ BlobStore = (*SQLBlobStore)(nil)

// NewSQLiteBlobStore opens (and creates) a SQLite archive at dsn.
func NewSQLiteBlobStore(dsn string) (*SQLBlobStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlite archive requires a dsn")
	}
	// Only create parent directories if not using in-memory SQLite (":memory:").
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, logger.Errorf("failed to create db directory %q: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	s := &SQLBlobStore{db: db, driver: "sqlite"}
	if err := s.migrate(context.Background(), "BLOB"); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresBlobStore connects to a Postgres archive at dsn.
func NewPostgresBlobStore(ctx context.Context, dsn string) (*SQLBlobStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres archive requires a dsn")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	s := &SQLBlobStore{db: db, driver: "postgres"}
	if err := s.migrate(ctx, "BYTEA"); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLBlobStore) migrate(ctx context.Context, blobType string) error {
	stmt := `
CREATE TABLE IF NOT EXISTS archive_objects (
	object_key TEXT PRIMARY KEY,
	content_type TEXT NOT NULL,
	body ` + blobType + ` NOT NULL,
	created_at BIGINT NOT NULL
)`
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create archive table: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders for drivers that number them.
func (s *SQLBlobStore) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Put inserts a new object. Existing keys are never overwritten.
func (s *SQLBlobStore) Put(ctx context.Context, data []byte, mime, key string) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}
	key = strings.TrimPrefix(key, "/")
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO archive_objects (object_key, content_type, body, created_at) VALUES (?, ?, ?, ?)`),
		key, mime, data, time.Now().UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("insert archive object %s: %w", key, err)
	}
	return sqlURLPrefix + key, nil
}

// Get retrieves an object by its db:// URL.
func (s *SQLBlobStore) Get(ctx context.Context, url string) ([]byte, error) {
	key, ok := strings.CutPrefix(url, sqlURLPrefix)
	if !ok {
		return nil, logger.Errorf("invalid archive URL: %s", url)
	}
	var body []byte
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT body FROM archive_objects WHERE object_key = ?`), key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("archive object %s not found", key)
	}
	return body, err
}

// Count returns the number of archived objects whose key starts with prefix.
func (s *SQLBlobStore) Count(ctx context.Context, prefix string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT COUNT(*) FROM archive_objects WHERE object_key LIKE ?`), prefix+"%",
	).Scan(&n)
	return n, err
}

func (s *SQLBlobStore) Close() error {
	return s.db.Close()
}
