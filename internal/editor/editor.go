// Package editor applies page edits to an open document and delivers the
// result to its source: the store for saved documents, a callback otherwise.
package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Bluenz7/pdfredactor/internal/codec"
	"github.com/Bluenz7/pdfredactor/internal/documents"
)

var sharedLocks documents.Locks

const noSelection = -1

// Editor holds the working bytes of one open document, its page previews
// and the current page selection. All operations are serialized.
type Editor struct {
	mu       sync.Mutex
	source   Source
	data     []byte
	previews []image.Image
	width    float64
	selected int

	codec  codec.System
	store  documents.Store
	locks  *documents.Locks
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Editor.
type Option func(*Editor)

// WithLocks sets the per-document lock table guarding fetch-then-update.
// Editors share a process-wide table by default.
func WithLocks(l *documents.Locks) Option {
	return func(e *Editor) { e.locks = l }
}

// WithClock sets the time source used to stamp updated documents.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) { e.now = now }
}

// NewSaved opens a stored document for editing.
func NewSaved(doc documents.Document, c codec.System, store documents.Store, logger *slog.Logger, opts ...Option) *Editor {
	e := newEditor(Saved{Document: doc}, doc.Data, c, logger, opts)
	e.store = store
	return e
}

// NewEphemeral opens unpersisted bytes for editing. onUpdate may be nil.
func NewEphemeral(data []byte, onUpdate func([]byte), c codec.System, logger *slog.Logger, opts ...Option) *Editor {
	return newEditor(Ephemeral{OnUpdate: onUpdate}, data, c, logger, opts)
}

func newEditor(src Source, data []byte, c codec.System, logger *slog.Logger, opts []Option) *Editor {
	e := &Editor{
		source:   src,
		data:     bytes.Clone(data),
		selected: noSelection,
		codec:    c,
		locks:    &sharedLocks,
		logger:   logger.With("system", "editor"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Source returns the current source.
func (e *Editor) Source() Source {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source
}

// Data returns a copy of the working bytes.
func (e *Editor) Data() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return bytes.Clone(e.data)
}

// Render rasterizes previews of every page at width. When force is false and
// previews already exist at that width, nothing is rendered.
// A selection past the last page is cleared.
func (e *Editor) Render(ctx context.Context, width float64, force bool) error {
	if width <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidWidth, width)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !force && e.previews != nil && e.width == width {
		return nil
	}

	previews, err := e.rasterize(ctx, width)
	if err != nil {
		return err
	}

	e.previews = previews
	e.width = width
	if e.selected >= len(previews) {
		e.selected = noSelection
	}
	return nil
}

// Select marks the page at index as selected. Out-of-range indices are
// ignored and reported as false.
func (e *Editor) Select(index int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if index < 0 || index >= e.pageCount() {
		return false
	}
	e.selected = index
	return true
}

// Deselect clears the selection.
func (e *Editor) Deselect() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = noSelection
}

// Selected returns the selected page index, if any.
func (e *Editor) Selected() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected, e.selected != noSelection
}

// DeleteSelectedPage removes the selected page.
//
// It reports true once the page has been removed from the working bytes.
// The selection is then cleared and previews re-rendered before the edit is
// delivered to the source. A false result leaves every piece of state
// unchanged and carries the precondition error. A true result with a non-nil
// error means the edit was kept in memory but could not be persisted.
func (e *Editor) DeleteSelectedPage(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selected == noSelection {
		return false, ErrNoSelection
	}
	return e.deletePage(ctx, e.selected)
}

// DeletePage removes the page at index with the same semantics as
// DeleteSelectedPage.
func (e *Editor) DeletePage(ctx context.Context, index int) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deletePage(ctx, index)
}

// RotateSelectedPage rotates the selected page clockwise by degrees and
// delivers the result like DeleteSelectedPage. The selection is kept.
func (e *Editor) RotateSelectedPage(ctx context.Context, degrees int) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selected == noSelection {
		return false, ErrNoSelection
	}

	data, err := e.codec.RotatePage(e.data, e.selected, degrees)
	if err != nil {
		return false, err
	}

	e.data = data
	e.refreshPreviews(ctx)

	return true, e.deliver(ctx, data)
}

func (e *Editor) deletePage(ctx context.Context, index int) (bool, error) {
	count, err := e.codec.PageCount(e.data)
	if err != nil {
		return false, err
	}
	if index < 0 || index >= count {
		return false, fmt.Errorf("%w: index %d, page count %d", codec.ErrIndexOutOfRange, index, count)
	}

	data, err := e.codec.RemovePage(e.data, index)
	if err != nil {
		return false, err
	}

	e.data = data
	if index < len(e.previews) {
		e.previews = slices.Delete(e.previews, index, index+1)
	}
	e.selected = noSelection

	e.refreshPreviews(ctx)

	return true, e.deliver(ctx, data)
}

// refreshPreviews re-renders previews at the last width after an edit.
// Failure clears previews rather than leaving stale ones.
func (e *Editor) refreshPreviews(ctx context.Context) {
	if e.width <= 0 {
		return
	}

	previews, err := e.rasterize(ctx, e.width)
	if err != nil {
		e.logger.Warn("preview render failed", "width", e.width, "error", err)
		e.previews = nil
		return
	}
	e.previews = previews
}

func (e *Editor) rasterize(ctx context.Context, width float64) ([]image.Image, error) {
	set, err := e.codec.Decode(e.data)
	if err != nil {
		return nil, err
	}
	return set.RasterizeWidth(ctx, width)
}

func (e *Editor) deliver(ctx context.Context, data []byte) error {
	switch src := e.source.(type) {
	case Ephemeral:
		if src.OnUpdate != nil {
			src.OnUpdate(bytes.Clone(data))
		}
		return nil
	case Saved:
		return e.persist(ctx, src.Document, data)
	default:
		return fmt.Errorf("unknown source %T", src)
	}
}

// persist writes data to the stored document if it still exists.
// A vanished record turns the source ephemeral without writing.
func (e *Editor) persist(ctx context.Context, old documents.Document, data []byte) error {
	thumb, err := e.codec.ThumbnailPNG(data)
	if err != nil {
		e.logger.Warn("thumbnail generation failed", "id", old.ID, "error", err)
		thumb = nil
	}
	updated := old.WithData(bytes.Clone(data), thumb, e.now())

	unlock := e.locks.Lock(old.ID)
	defer unlock()

	if _, err := e.store.Fetch(ctx, old.ID); err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			e.detach(old)
			return nil
		}
		e.logger.Error("document fetch failed", "id", old.ID, "error", err)
		return persistenceError(err)
	}

	if err := e.store.Update(ctx, updated); err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			e.detach(old)
			return nil
		}
		e.logger.Error("document update failed", "id", old.ID, "error", err)
		return persistenceError(err)
	}

	e.source = Saved{Document: updated}
	e.logger.Info("document updated", "id", updated.ID, "size", len(updated.Data))
	return nil
}

func (e *Editor) detach(old documents.Document) {
	e.logger.Info("document no longer stored, continuing unsaved", "id", old.ID)
	e.source = Ephemeral{}
}

func persistenceError(err error) error {
	if errors.Is(err, documents.ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %w", documents.ErrPersistence, err)
}

func (e *Editor) pageCount() int {
	if e.previews != nil {
		return len(e.previews)
	}
	n, err := e.codec.PageCount(e.data)
	if err != nil {
		return 0
	}
	return n
}
