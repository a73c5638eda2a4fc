package storage_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Bluenz7/pdfredactor/internal/config"
	"github.com/Bluenz7/pdfredactor/internal/lifecycle"
	"github.com/Bluenz7/pdfredactor/internal/storage"
	"github.com/google/uuid"
)

func newStorage(t *testing.T) (storage.System, string) {
	t.Helper()
	dir := t.TempDir()
	sys, err := storage.New(&config.StorageConfig{BasePath: dir}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return sys, dir
}

func TestNew_EmptyBasePath(t *testing.T) {
	if _, err := storage.New(&config.StorageConfig{}, slog.New(slog.NewTextHandler(io.Discard, nil))); err == nil {
		t.Fatal("New() succeeded with empty base path")
	}
}

func TestStart_CreatesDirectory(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "blobs")
	sys, err := storage.New(&config.StorageConfig{BasePath: target}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	lc := lifecycle.New()
	if err := sys.Start(lc); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	lc.WaitForStartup()
	defer lc.Shutdown(time.Second)

	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		t.Errorf("base directory not created: %v", err)
	}
}

func TestStoreRetrieveDelete(t *testing.T) {
	ctx := context.Background()
	sys, dir := newStorage(t)
	id := uuid.New()
	key := storage.DataKey(id)

	if err := sys.Store(ctx, key, []byte("v1")); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := sys.Store(ctx, key, []byte("v2")); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	got, err := sys.Retrieve(ctx, key)
	if err != nil || string(got) != "v2" {
		t.Fatalf("Retrieve = %q, %v", got, err)
	}

	if ok, err := sys.Exists(ctx, key); !ok || err != nil {
		t.Errorf("Exists = %v, %v", ok, err)
	}

	if err := sys.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := sys.Delete(ctx, key); err != nil {
		t.Errorf("second Delete error = %v, want nil", err)
	}
	if _, err := sys.Retrieve(ctx, key); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Retrieve after delete error = %v, want ErrNotFound", err)
	}

	if _, err := os.Stat(filepath.Join(dir, storage.DocumentsPrefix)); !os.IsNotExist(err) {
		t.Error("empty document directories not pruned")
	}
}

func TestDeletePrefix(t *testing.T) {
	ctx := context.Background()
	sys, _ := newStorage(t)
	a, b := uuid.New(), uuid.New()

	for _, key := range []string{storage.DataKey(a), storage.ThumbnailKey(a), storage.DataKey(b)} {
		if err := sys.Store(ctx, key, []byte("x")); err != nil {
			t.Fatalf("Store(%s) failed: %v", key, err)
		}
	}

	if err := sys.DeletePrefix(ctx, storage.DocumentPrefix(a)); err != nil {
		t.Fatalf("DeletePrefix failed: %v", err)
	}

	if ok, _ := sys.Exists(ctx, storage.ThumbnailKey(a)); ok {
		t.Error("blob under deleted prefix still exists")
	}
	if ok, _ := sys.Exists(ctx, storage.DataKey(b)); !ok {
		t.Error("blob outside prefix removed")
	}
}

func TestInvalidKeys(t *testing.T) {
	ctx := context.Background()
	sys, _ := newStorage(t)

	for _, key := range []string{"", "../escape", "/etc/passwd", "a/../../b"} {
		t.Run(key, func(t *testing.T) {
			if err := sys.Store(ctx, key, []byte("x")); !errors.Is(err, storage.ErrInvalidKey) {
				t.Errorf("Store(%q) error = %v, want ErrInvalidKey", key, err)
			}
		})
	}

	if err := sys.DeletePrefix(ctx, "."); !errors.Is(err, storage.ErrInvalidKey) {
		t.Errorf("DeletePrefix(.) error = %v, want ErrInvalidKey", err)
	}
}
