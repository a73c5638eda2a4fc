// Package storetest runs the documents.Store contract against a backend.
package storetest

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Bluenz7/pdfredactor/internal/documents"
	"github.com/google/uuid"
)

// Doc builds a document with recognizable payloads.
func Doc(name string, ts time.Time) documents.Document {
	return documents.New(name, documents.FileTypePDF, []byte("%PDF-"+name), []byte("png-"+name), ts)
}

// Run exercises every Store operation. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) documents.Store) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("create and fetch", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		doc := Doc("alpha", base)

		if err := s.Create(ctx, doc); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		got, err := s.Fetch(ctx, doc.ID)
		if err != nil {
			t.Fatalf("Fetch failed: %v", err)
		}
		assertEqual(t, got, doc)
	})

	t.Run("create duplicate", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		doc := Doc("alpha", base)

		if err := s.Create(ctx, doc); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if err := s.Create(ctx, doc); !errors.Is(err, documents.ErrDuplicate) {
			t.Errorf("second Create error = %v, want ErrDuplicate", err)
		}
	})

	t.Run("update replaces payload", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		doc := Doc("alpha", base)
		if err := s.Create(ctx, doc); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		updated := doc.WithData([]byte("%PDF-edited"), nil, base.Add(time.Minute))
		if err := s.Update(ctx, updated); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		got, err := s.Fetch(ctx, doc.ID)
		if err != nil {
			t.Fatalf("Fetch failed: %v", err)
		}
		assertEqual(t, got, updated)
	})

	t.Run("update without thumbnail keeps record", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		doc := Doc("alpha", base)
		if err := s.Create(ctx, doc); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		emptied := doc.WithData([]byte("%PDF-empty"), nil, base.Add(time.Hour))
		if err := s.Update(ctx, emptied); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		got, err := s.Fetch(ctx, doc.ID)
		if err != nil {
			t.Fatalf("Fetch failed: %v", err)
		}
		if len(got.Thumbnail) != 0 {
			t.Errorf("thumbnail = %d bytes, want none", len(got.Thumbnail))
		}
		assertEqual(t, got, emptied)

		docs, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(docs) != 1 || docs[0].ID != doc.ID {
			t.Errorf("List = %d documents, want the updated record", len(docs))
		}
	})

	t.Run("update missing never creates", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		doc := Doc("ghost", base)

		if err := s.Update(ctx, doc); !errors.Is(err, documents.ErrNotFound) {
			t.Errorf("Update error = %v, want ErrNotFound", err)
		}
		if _, err := s.Fetch(ctx, doc.ID); !errors.Is(err, documents.ErrNotFound) {
			t.Errorf("Fetch after failed Update error = %v, want ErrNotFound", err)
		}
	})

	t.Run("missing ids", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		id := uuid.New()

		if _, err := s.Fetch(ctx, id); !errors.Is(err, documents.ErrNotFound) {
			t.Errorf("Fetch error = %v, want ErrNotFound", err)
		}
		if err := s.Delete(ctx, id); !errors.Is(err, documents.ErrNotFound) {
			t.Errorf("Delete error = %v, want ErrNotFound", err)
		}
	})

	t.Run("list delete clear", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		a, b, c := Doc("a", base), Doc("b", base.Add(time.Hour)), Doc("c", base.Add(2*time.Hour))
		for _, d := range []documents.Document{a, b, c} {
			if err := s.Create(ctx, d); err != nil {
				t.Fatalf("Create failed: %v", err)
			}
		}

		docs, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(docs) != 3 {
			t.Fatalf("List returned %d documents, want 3", len(docs))
		}

		if err := s.Delete(ctx, b.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if docs, _ = s.List(ctx); len(docs) != 2 {
			t.Errorf("List after delete returned %d documents, want 2", len(docs))
		}

		if err := s.Clear(ctx); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		if docs, _ = s.List(ctx); len(docs) != 0 {
			t.Errorf("List after clear returned %d documents, want 0", len(docs))
		}
		if err := s.Clear(ctx); err != nil {
			t.Errorf("Clear on empty store error = %v", err)
		}
	})
}

func assertEqual(t *testing.T, got, want documents.Document) {
	t.Helper()
	if got.ID != want.ID || got.Name != want.Name || got.FileType != want.FileType {
		t.Errorf("identity = %s/%q/%q, want %s/%q/%q", got.ID, got.Name, got.FileType, want.ID, want.Name, want.FileType)
	}
	if !bytes.Equal(got.Data, want.Data) {
		t.Errorf("data = %q, want %q", got.Data, want.Data)
	}
	if !bytes.Equal(got.Thumbnail, want.Thumbnail) {
		t.Errorf("thumbnail = %q, want %q", got.Thumbnail, want.Thumbnail)
	}
	if !got.Timestamp.Equal(want.Timestamp) {
		t.Errorf("timestamp = %v, want %v", got.Timestamp, want.Timestamp)
	}
}
