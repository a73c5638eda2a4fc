// Package merge combines two documents into a new stored document.
package merge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Bluenz7/pdfredactor/internal/codec"
	"github.com/Bluenz7/pdfredactor/internal/documents"
)

// Engine merges documents and persists the result.
type Engine struct {
	codec  codec.System
	store  documents.Store
	logger *slog.Logger
	now    func() time.Time
}

// New creates a merge engine.
func New(c codec.System, store documents.Store, logger *slog.Logger) *Engine {
	return &Engine{
		codec:  c,
		store:  store,
		logger: logger.With("system", "merge"),
		now:    time.Now,
	}
}

// Merge creates a new document named name holding every page of a followed
// by every page of b. Neither input is modified. The result is returned only
// after it has been persisted.
func (e *Engine) Merge(ctx context.Context, a, b documents.Document, name string) (*documents.Document, error) {
	for _, src := range []documents.Document{a, b} {
		if _, err := e.codec.Decode(src.Data); err != nil {
			return nil, fmt.Errorf("decode %s: %w", src.ID, err)
		}
	}

	data, err := e.codec.Concat(a.Data, b.Data)
	if err != nil {
		return nil, fmt.Errorf("concat %s and %s: %w", a.ID, b.ID, err)
	}

	thumb, err := e.codec.ThumbnailPNG(data)
	if err != nil {
		e.logger.Warn("thumbnail generation failed", "name", name, "error", err)
		thumb = nil
	}

	merged := documents.New(name, documents.FileTypePDF, data, thumb, e.now())

	if err := e.store.Create(ctx, merged); err != nil {
		e.logger.Error("merged document not stored", "source", a.ID, "target", b.ID, "error", err)
		return nil, fmt.Errorf("store merged document: %w", err)
	}

	e.logger.Info("documents merged", "id", merged.ID, "source", a.ID, "target", b.ID)
	return &merged, nil
}
