package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Bluenz7/pdfredactor/internal/codec"
	"github.com/Bluenz7/pdfredactor/internal/codec/codectest"
	"github.com/Bluenz7/pdfredactor/internal/documents"
	"github.com/Bluenz7/pdfredactor/internal/session"
	"github.com/Bluenz7/pdfredactor/internal/store/memory"
	"github.com/Bluenz7/pdfredactor/internal/store/mocks"
	"github.com/stretchr/testify/mock"
)

var base = time.Date(2020, 3, 1, 12, 0, 0, 0, time.UTC)

func newEnv(store documents.Store) *Env {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Env{
		Store:  store,
		Codec:  codec.New(codectest.NewRenderer(color.White), codec.Config{Workers: 1}, logger),
		Logger: logger,
		Now:    func() time.Time { return base },
	}
}

func TestListSeeders(t *testing.T) {
	got := listSeeders()
	if len(got) != 2 {
		t.Fatalf("len(listSeeders()) = %d, want 2", len(got))
	}
	if got[0].Name() != "dir" || got[1].Name() != "samples" {
		t.Errorf("listSeeders() names = %s, %s, want dir, samples", got[0].Name(), got[1].Name())
	}
}

func TestRunSeeders_Samples(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	env := newEnv(store)

	n, err := runSeeders(ctx, env, "samples")
	if err != nil {
		t.Fatalf("runSeeders() error = %v", err)
	}
	if n != len(samples) {
		t.Errorf("runSeeders() = %d, want %d", n, len(samples))
	}

	docs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(docs) != len(samples) {
		t.Fatalf("stored %d documents, want %d", len(docs), len(samples))
	}

	for _, doc := range docs {
		if doc.FileType != documents.FileTypePDF {
			t.Errorf("%s: file type = %q, want pdf", doc.Name, doc.FileType)
		}
		if !doc.Timestamp.Equal(base) {
			t.Errorf("%s: timestamp = %v, want %v", doc.Name, doc.Timestamp, base)
		}
		if len(doc.Thumbnail) == 0 {
			t.Errorf("%s: missing thumbnail", doc.Name)
		}
	}
}

func TestRunSeeders_UnknownSeeder(t *testing.T) {
	env := newEnv(memory.New())

	if _, err := runSeeders(context.Background(), env, "nope"); err == nil {
		t.Error("runSeeders() error = nil, want error for unknown seeder")
	}
}

func TestRunSeeders_RollbackOnFailure(t *testing.T) {
	store := new(mocks.MockStore)
	store.On("Create", mock.Anything, mock.Anything).Return(nil).Twice()
	store.On("Create", mock.Anything, mock.Anything).Return(documents.ErrPersistence).Once()
	store.On("Delete", mock.Anything, mock.Anything).Return(nil).Twice()

	_, err := runSeeders(context.Background(), newEnv(store), "samples")
	if !errors.Is(err, documents.ErrPersistence) {
		t.Fatalf("runSeeders() error = %v, want ErrPersistence", err)
	}

	store.AssertExpectations(t)
}

func TestDirectorySeeder(t *testing.T) {
	dir := t.TempDir()
	env := newEnv(memory.New())

	var img bytes.Buffer
	if err := png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 40, 60))); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}

	draft := session.NewDraft(env.Codec, nil, env.Logger)
	if _, err := draft.Append(image.NewRGBA(image.Rect(0, 0, 40, 60))); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	pdf, err := draft.Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	files := map[string][]byte{
		"scan.png":   img.Bytes(),
		"report.pdf": pdf,
		"notes.txt":  []byte("not a document"),
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatalf("WriteFile(%s) error = %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}

	seeder := &DirectorySeeder{}
	seeder.SetDir(dir)

	n, err := seeder.Seed(context.Background(), env)
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("Seed() = %d, want 2", n)
	}

	docs, err := env.Store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	names := map[string]bool{}
	for _, doc := range docs {
		names[doc.Name] = true
	}
	for _, want := range []string{"scan", "report"} {
		if !names[want] {
			t.Errorf("missing imported document %q", want)
		}
	}
}

func TestDirectorySeeder_Errors(t *testing.T) {
	tests := []struct {
		name string
		dir  string
	}{
		{"unset", ""},
		{"missing", filepath.Join(os.TempDir(), "pdfredactor-seed-missing")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seeder := &DirectorySeeder{dir: tt.dir}
			if _, err := seeder.Seed(context.Background(), newEnv(memory.New())); err == nil {
				t.Error("Seed() error = nil, want error")
			}
		})
	}
}
