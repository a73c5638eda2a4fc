// Package session holds an ordered, mutable sequence of page rasters with
// stable identities and encodes it into a PDF on request.
package session

import (
	"image"
	"slices"
	"sync"

	"github.com/Bluenz7/pdfredactor/internal/codec"
	"github.com/google/uuid"
)

// PageRef is one page of a session.
// Identity is ID alone; two refs with equal images are still distinct pages.
type PageRef struct {
	ID    uuid.UUID
	Image image.Image
}

// Session is an ordered page sequence. Mutations are serialized and never
// trigger encoding; callers decide when to call Encode.
type Session struct {
	mu    sync.Mutex
	pages []PageRef
	codec codec.System
}

// New creates an empty session that encodes through c.
func New(c codec.System) *Session {
	return &Session{codec: c}
}

// Append adds images to the end of the session in input order and returns
// the identifiers assigned to them.
func (s *Session) Append(images ...image.Image) []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]uuid.UUID, len(images))
	for i, img := range images {
		ids[i] = uuid.New()
		s.pages = append(s.pages, PageRef{ID: ids[i], Image: img})
	}
	return ids
}

// RemoveByID removes the page with id and reports whether one was removed.
func (s *Session) RemoveByID(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.pages {
		if p.ID == id {
			s.pages = slices.Delete(s.pages, i, i+1)
			return true
		}
	}
	return false
}

// Pages returns a copy of the current page sequence.
func (s *Session) Pages() []PageRef {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]PageRef, len(s.pages))
	copy(out, s.pages)
	return out
}

// IDs returns the page identifiers in order.
func (s *Session) IDs() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]uuid.UUID, len(s.pages))
	for i, p := range s.pages {
		ids[i] = p.ID
	}
	return ids
}

// Len returns the number of pages.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

// Encode renders the current page sequence into a PDF.
// The page sequence is captured under the lock and encoded outside it.
func (s *Session) Encode(pageSize *codec.Size) ([]byte, error) {
	pages := s.Pages()

	images := make([]image.Image, len(pages))
	for i, p := range pages {
		images[i] = p.Image
	}
	return s.codec.Encode(images, pageSize)
}
