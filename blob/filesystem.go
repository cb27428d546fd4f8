package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/awantoch/formrelay/logger"
)

// FilesystemBlobStore implements BlobStore using the local filesystem.
// Intended for local development and self-hosted deployments.
type FilesystemBlobStore struct {
	dir string
}

// NewFilesystemBlobStore creates a new FilesystemBlobStore with the given directory.
// The directory will be created if it does not exist.
func NewFilesystemBlobStore(dir string) (*FilesystemBlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FilesystemBlobStore{dir: dir}, nil
}

// Put stores the blob as a file under the directory. Returns a file:// URL.
func (f *FilesystemBlobStore) Put(ctx context.Context, data []byte, mime, key string) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filepath.Join(f.dir, filepath.FromSlash(strings.TrimPrefix(key, "/")))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	// Write atomically
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", err
	}
	return "file://" + path, nil
}

// Get retrieves the blob from the file:// URL.
func (f *FilesystemBlobStore) Get(ctx context.Context, url string) ([]byte, error) {
	const prefix = "file://"
	if !strings.HasPrefix(url, prefix) {
		return nil, logger.Errorf("invalid file URL: %s", url)
	}
	return os.ReadFile(url[len(prefix):])
}
