package merge_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Bluenz7/pdfredactor/internal/codec"
	"github.com/Bluenz7/pdfredactor/internal/codec/codectest"
	"github.com/Bluenz7/pdfredactor/internal/documents"
	"github.com/Bluenz7/pdfredactor/internal/merge"
	"github.com/Bluenz7/pdfredactor/internal/store/memory"
	"github.com/Bluenz7/pdfredactor/internal/store/mocks"
	"github.com/stretchr/testify/mock"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCodec() codec.System {
	return codec.New(codectest.NewRenderer(color.White), codec.Config{Workers: 1}, discard())
}

func storedDoc(t *testing.T, c codec.System, name string, w, h, pages int) documents.Document {
	t.Helper()
	images := make([]image.Image, pages)
	for i := range images {
		images[i] = image.NewGray(image.Rect(0, 0, w, h))
	}
	data, err := c.Encode(images, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return documents.New(name, documents.FileTypePDF, data, nil, time.Now())
}

func TestMerge_OrderAndSources(t *testing.T) {
	ctx := context.Background()
	c := newCodec()
	store := memory.New()

	a := storedDoc(t, c, "a", 100, 150, 2)
	b := storedDoc(t, c, "b", 200, 100, 3)
	for _, d := range []documents.Document{a, b} {
		if err := store.Create(ctx, d); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	merged, err := merge.New(c, store, discard()).Merge(ctx, a, b, "a + b")
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if merged.ID == a.ID || merged.ID == b.ID {
		t.Error("merged document reused a source id")
	}
	if merged.Name != "a + b" || merged.FileType != documents.FileTypePDF {
		t.Errorf("merged = %q/%q", merged.Name, merged.FileType)
	}
	if len(merged.Thumbnail) == 0 {
		t.Error("merged thumbnail missing")
	}

	set, err := c.Decode(merged.Data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	boxes := set.MediaBoxes()
	if len(boxes) != 5 {
		t.Fatalf("page count = %d, want 5", len(boxes))
	}
	for i, box := range boxes {
		want := codec.Size{Width: 100, Height: 150}
		if i >= 2 {
			want = codec.Size{Width: 200, Height: 100}
		}
		if box != want {
			t.Errorf("page %d box = %+v, want %+v", i, box, want)
		}
	}

	for _, src := range []documents.Document{a, b} {
		got, err := store.Fetch(ctx, src.ID)
		if err != nil {
			t.Fatalf("source %s not fetchable: %v", src.Name, err)
		}
		if !bytes.Equal(got.Data, src.Data) {
			t.Errorf("source %s modified", src.Name)
		}
	}

	if _, err := store.Fetch(ctx, merged.ID); err != nil {
		t.Errorf("merged document not stored: %v", err)
	}
}

func TestMerge_InvalidData(t *testing.T) {
	ctx := context.Background()
	c := newCodec()

	store := new(mocks.MockStore)
	a := storedDoc(t, c, "a", 50, 50, 1)
	bad := documents.New("bad", documents.FileTypePDF, []byte("junk"), nil, time.Now())

	merged, err := merge.New(c, store, discard()).Merge(ctx, a, bad, "x")
	if !errors.Is(err, codec.ErrInvalidData) {
		t.Errorf("Merge error = %v, want ErrInvalidData", err)
	}
	if merged != nil {
		t.Error("merged document returned on failure")
	}

	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMerge_PersistenceFailure(t *testing.T) {
	ctx := context.Background()
	c := newCodec()

	store := new(mocks.MockStore)
	store.On("Create", mock.Anything, mock.Anything).Return(documents.ErrPersistence)

	a := storedDoc(t, c, "a", 50, 50, 1)
	b := storedDoc(t, c, "b", 50, 50, 1)

	merged, err := merge.New(c, store, discard()).Merge(ctx, a, b, "ab")
	if !errors.Is(err, documents.ErrPersistence) {
		t.Errorf("Merge error = %v, want ErrPersistence", err)
	}
	if merged != nil {
		t.Error("merged document returned despite persistence failure")
	}
	store.AssertExpectations(t)
}
