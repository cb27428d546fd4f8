package blob

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/awantoch/formrelay/config"
	"github.com/awantoch/formrelay/constants"
	"github.com/awantoch/formrelay/logger"
)

// BlobStore is the interface for pluggable archive backends. Keys are
// slash separated paths; Put returns a URL that Get understands.
type BlobStore interface {
	Put(ctx context.Context, data []byte, mime, key string) (url string, err error)
	Get(ctx context.Context, url string) ([]byte, error)
}

// ErrNotConfigured means archiving is disabled or lacks credentials.
var ErrNotConfigured = errors.New("archive store not configured")

// See filesystem.go, s3.go and sql.go for driver implementations.

// NewDefaultBlobStore returns the BlobStore selected by cfg. It returns
// ErrNotConfigured (wrapped with the reason) when archiving cannot run.
func NewDefaultBlobStore(ctx context.Context, cfg config.ArchiveConfig) (BlobStore, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", constants.ArchiveDriverNone:
		return nil, fmt.Errorf("%w: driver is none", ErrNotConfigured)
	case constants.ArchiveDriverS3:
		if !cfg.HasCredentials() {
			return nil, fmt.Errorf("%w: s3 driver requires access key, secret key, bucket and region", ErrNotConfigured)
		}
		return NewS3BlobStore(ctx, S3Options{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		})
	case constants.ArchiveDriverFilesystem:
		dir := cfg.Directory
		if dir == "" {
			dir = config.DefaultBlobDir
		}
		return NewFilesystemBlobStore(dir)
	case constants.ArchiveDriverSQLite:
		return NewSQLiteBlobStore(cfg.DSN)
	case constants.ArchiveDriverPostgres:
		return NewPostgresBlobStore(ctx, cfg.DSN)
	}
	return nil, logger.Errorf("unsupported archive driver: %s", cfg.Driver)
}

// validKey rejects keys that could escape a store's namespace.
func validKey(key string) error {
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return fmt.Errorf("empty archive key")
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." {
			return fmt.Errorf("invalid archive key %q", key)
		}
	}
	return nil
}
