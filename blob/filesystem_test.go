package blob

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
)

func newTestFilesystemBlobStore(t *testing.T) *FilesystemBlobStore {
	dir := filepath.Join(t.TempDir(), "archive")
	store, err := NewFilesystemBlobStore(dir)
	if err != nil {
		t.Fatalf("NewFilesystemBlobStore failed: %v", err)
	}
	return store
}

func TestFilesystemBlobStore_RoundTrip(t *testing.T) {
	store := newTestFilesystemBlobStore(t)
	value := []byte(`{"payment_id":"p1"}`)
	url, err := store.Put(context.Background(), value, "application/json", "/nowpayments/payments/2025-01-01_p1_abc.json")
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, err := store.Get(context.Background(), url)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, value) {
		t.Errorf("expected %q, got %q", value, got)
	}
}

func TestFilesystemBlobStore_EmptyData(t *testing.T) {
	store := newTestFilesystemBlobStore(t)
	url, err := store.Put(context.Background(), []byte{}, "text/plain", "empty.txt")
	if err != nil {
		t.Fatalf("Put failed for empty data: %v", err)
	}
	got, err := store.Get(context.Background(), url)
	if err != nil {
		t.Errorf("Get failed for empty data: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty data, got %v bytes", len(got))
	}
}

func TestFilesystemBlobStore_RejectsTraversal(t *testing.T) {
	store := newTestFilesystemBlobStore(t)
	for _, key := range []string{"", "../escape.json", "a/../../b"} {
		if _, err := store.Put(context.Background(), []byte("x"), "text/plain", key); err == nil {
			t.Errorf("expected error for key %q", key)
		}
	}
}

func TestFilesystemBlobStore_InvalidURL(t *testing.T) {
	store := newTestFilesystemBlobStore(t)
	if _, err := store.Get(context.Background(), "s3://bucket/key"); err == nil {
		t.Error("expected error for non-file URL")
	}
}

func TestFilesystemBlobStore_CanceledContext(t *testing.T) {
	store := newTestFilesystemBlobStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Put(ctx, []byte("x"), "text/plain", "x.txt"); err == nil {
		t.Error("expected error for canceled context")
	}
}
