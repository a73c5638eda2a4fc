// Package memory implements documents.Store in process memory.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Bluenz7/pdfredactor/internal/documents"
	"github.com/google/uuid"
)

type store struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]documents.Document
}

// New creates an empty in-memory store.
// Documents are cloned on the way in and out so callers never share byte slices.
func New() documents.Store {
	return &store{docs: make(map[uuid.UUID]documents.Document)}
}

func (s *store) Create(ctx context.Context, doc documents.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[doc.ID]; ok {
		return fmt.Errorf("%w: %s", documents.ErrDuplicate, doc.ID)
	}
	s.docs[doc.ID] = doc.Clone()
	return nil
}

func (s *store) Update(ctx context.Context, doc documents.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[doc.ID]; !ok {
		return fmt.Errorf("%w: %s", documents.ErrNotFound, doc.ID)
	}
	s.docs[doc.ID] = doc.Clone()
	return nil
}

func (s *store) Fetch(ctx context.Context, id uuid.UUID) (documents.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return documents.Document{}, fmt.Errorf("%w: %s", documents.ErrNotFound, id)
	}
	return doc.Clone(), nil
}

func (s *store) List(ctx context.Context) ([]documents.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]documents.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, doc.Clone())
	}
	return out, nil
}

func (s *store) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return fmt.Errorf("%w: %s", documents.ErrNotFound, id)
	}
	delete(s.docs, id)
	return nil
}

func (s *store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.docs)
	return nil
}
