package session

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Bluenz7/pdfredactor/internal/codec"
	"github.com/Bluenz7/pdfredactor/internal/documents"
	"github.com/google/uuid"
)

// Draft is a named session being assembled into a new document.
// Once output has been generated, every Append and Remove re-encodes it so
// the output tracks the pages.
type Draft struct {
	mu       sync.Mutex
	name     string
	pageSize *codec.Size
	output   []byte

	session *Session
	codec   codec.System
	logger  *slog.Logger
	now     func() time.Time
}

// NewDraft creates an empty draft. A nil pageSize uses the first page's size.
func NewDraft(c codec.System, pageSize *codec.Size, logger *slog.Logger) *Draft {
	return &Draft{
		pageSize: pageSize,
		session:  New(c),
		codec:    c,
		logger:   logger.With("system", "draft"),
		now:      time.Now,
	}
}

// SetName sets the name of the document the draft produces.
func (d *Draft) SetName(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.name = name
}

// Name returns the trimmed draft name.
func (d *Draft) Name() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return strings.TrimSpace(d.name)
}

// Session returns the underlying page session.
func (d *Draft) Session() *Session {
	return d.session
}

// Output returns a copy of the last generated bytes, or nil if none.
func (d *Draft) Output() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return bytes.Clone(d.output)
}

// CanGenerate reports whether the draft has a name and at least one page.
func (d *Draft) CanGenerate() bool {
	return d.Name() != "" && d.session.Len() > 0
}

// Append adds pages and refreshes existing output.
func (d *Draft) Append(images ...image.Image) ([]uuid.UUID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ids := d.session.Append(images...)
	return ids, d.refresh()
}

// Remove drops the page with id and refreshes existing output.
func (d *Draft) Remove(id uuid.UUID) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.session.RemoveByID(id) {
		return false, nil
	}
	return true, d.refresh()
}

// Generate encodes the current pages and stores the result as output.
func (d *Draft) Generate() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session.Len() == 0 {
		return nil, ErrNoPages
	}

	data, err := d.session.Encode(d.pageSize)
	if err != nil {
		return nil, err
	}
	d.output = data
	return bytes.Clone(data), nil
}

// Document builds a new document from the draft, generating output first
// when none exists. A thumbnail failure leaves the thumbnail empty.
func (d *Draft) Document() (documents.Document, error) {
	name := d.Name()
	if name == "" {
		return documents.Document{}, ErrEmptyName
	}

	data := d.Output()
	if data == nil {
		var err error
		if data, err = d.Generate(); err != nil {
			return documents.Document{}, fmt.Errorf("generate %q: %w", name, err)
		}
	}

	thumb, err := d.codec.ThumbnailPNG(data)
	if err != nil {
		d.logger.Warn("thumbnail generation failed", "name", name, "error", err)
		thumb = nil
	}

	return documents.New(name, documents.FileTypePDF, data, thumb, d.now()), nil
}

// refresh re-encodes output when it already exists. Must hold d.mu.
func (d *Draft) refresh() error {
	if d.output == nil {
		return nil
	}

	if d.session.Len() == 0 {
		d.output = nil
		return nil
	}

	data, err := d.session.Encode(d.pageSize)
	if err != nil {
		return fmt.Errorf("refresh output: %w", err)
	}
	d.output = data
	return nil
}
