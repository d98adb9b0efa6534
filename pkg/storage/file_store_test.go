package storage

import (
	"context"
	"os"
	"strings"
	"testing"
)

func TestFileStorePutAndPresign(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	ctx := context.Background()

	content := "isbn,qty\n111,2\n"
	if err := fs.Put(ctx, "orders/acme/po-1.csv", strings.NewReader(content), int64(len(content)), "text/csv"); err != nil {
		t.Fatalf("put: %v", err)
	}
	url, err := fs.PresignGet(ctx, "orders/acme/po-1.csv", 0)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.HasPrefix(url, "file://") {
		t.Fatalf("url = %q, want file URL", url)
	}
	data, err := os.ReadFile(strings.TrimPrefix(url, "file://"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != content {
		t.Fatalf("content = %q, want %q", data, content)
	}
}

func TestFileStoreRejectsTraversalKeys(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if err := fs.Put(context.Background(), "../escape.csv", strings.NewReader("x"), 1, "text/csv"); err == nil {
		t.Fatalf("expected traversal key to be rejected")
	}
}

func TestFileStoreDeleteMissingIsNoop(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if err := fs.Delete(context.Background(), "orders/none.csv"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}
