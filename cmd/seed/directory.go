package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Bluenz7/pdfredactor/internal/codec"
	"github.com/Bluenz7/pdfredactor/internal/documents"
	"github.com/Bluenz7/pdfredactor/internal/session"
)

func init() {
	registerSeeder(&DirectorySeeder{})
}

// DirectorySeeder imports every PDF and image in a directory as its own document.
// Other files are skipped.
type DirectorySeeder struct {
	dir string
}

func (s *DirectorySeeder) Name() string {
	return "dir"
}

func (s *DirectorySeeder) Description() string {
	return "Imports PDFs and images from a directory (-dir)"
}

// SetDir configures the directory to import from.
func (s *DirectorySeeder) SetDir(dir string) {
	s.dir = dir
}

func (s *DirectorySeeder) Seed(ctx context.Context, env *Env) (int, error) {
	if s.dir == "" {
		return 0, errors.New("no directory configured")
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read dir: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return count, fmt.Errorf("read %s: %w", entry.Name(), err)
		}

		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		doc, ok, err := importFile(env, name, data)
		if err != nil {
			return count, fmt.Errorf("import %s: %w", entry.Name(), err)
		}
		if !ok {
			env.Logger.Debug("skipping unsupported file", "file", entry.Name())
			continue
		}

		if err := env.Store.Create(ctx, doc); err != nil {
			return count, fmt.Errorf("store %s: %w", entry.Name(), err)
		}
		env.Logger.Info("file imported", "file", entry.Name(), "id", doc.ID)
		count++
	}

	return count, nil
}

// importFile builds a document from PDF or image bytes. ok is false for
// content that is neither.
func importFile(env *Env, name string, data []byte) (documents.Document, bool, error) {
	contentType := http.DetectContentType(data)

	switch {
	case contentType == "application/pdf":
		if _, err := env.Codec.PageCount(data); err != nil {
			return documents.Document{}, false, err
		}
		thumb, err := env.Codec.ThumbnailPNG(data)
		if err != nil {
			env.Logger.Warn("thumbnail generation failed", "name", name, "error", err)
			thumb = nil
		}
		return documents.New(name, documents.FileTypePDF, data, thumb, env.Now()), true, nil

	case strings.HasPrefix(contentType, "image/"):
		img, err := codec.DecodeImage(bytes.NewReader(data))
		if err != nil {
			return documents.Document{}, false, err
		}
		draft := session.NewDraft(env.Codec, nil, env.Logger)
		draft.SetName(name)
		if _, err := draft.Append(img); err != nil {
			return documents.Document{}, false, err
		}
		doc, err := draft.Document()
		if err != nil {
			return documents.Document{}, false, err
		}
		doc.Timestamp = env.Now()
		return doc, true, nil

	default:
		return documents.Document{}, false, nil
	}
}
