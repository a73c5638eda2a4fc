// Package collection keeps the document listing and drives the two-step
// merge workflow: pick a source, pick a target, confirm.
package collection

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/Bluenz7/pdfredactor/internal/documents"
	"github.com/google/uuid"
)

// Merger creates a stored document from the pages of a then b.
type Merger interface {
	Merge(ctx context.Context, a, b documents.Document, name string) (*documents.Document, error)
}

// Manager holds the cached listing and merge selection.
type Manager struct {
	mu     sync.Mutex
	docs   []documents.Document
	sel    Selection
	store  documents.Store
	merger Merger
	logger *slog.Logger
}

// New creates a manager. Call Refresh to load the listing.
func New(store documents.Store, merger Merger, logger *slog.Logger) *Manager {
	return &Manager{
		store:  store,
		merger: merger,
		logger: logger.With("system", "collection"),
	}
}

// Refresh reloads the listing from the store, newest first.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refresh(ctx)
}

func (m *Manager) refresh(ctx context.Context) error {
	docs, err := m.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	slices.SortStableFunc(docs, func(a, b documents.Document) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	m.docs = docs
	return nil
}

// Documents returns the cached listing, newest first.
func (m *Manager) Documents() []documents.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.docs)
}

// Find returns the cached document with id.
func (m *Manager) Find(id uuid.UUID) (documents.Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.docs, func(d documents.Document) bool { return d.ID == id })
	if i < 0 {
		return documents.Document{}, false
	}
	return m.docs[i], true
}

// Save stores a new document and refreshes the listing.
func (m *Manager) Save(ctx context.Context, doc documents.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Create(ctx, doc); err != nil {
		return err
	}
	m.logger.Info("document saved", "id", doc.ID, "name", doc.Name)
	return m.refresh(ctx)
}

// Delete removes a document and refreshes the listing. A merge involving the
// document is cancelled.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}

	if involves(m.sel, id) {
		m.sel = Selection{}
	}

	m.logger.Info("document deleted", "id", id)
	return m.refresh(ctx)
}

// Clear removes every document and cancels any merge.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		return err
	}

	m.sel = Selection{}
	m.docs = nil
	m.logger.Info("documents cleared")
	return nil
}

// Selection returns the merge workflow state.
func (m *Manager) Selection() Selection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sel
}

// StartMerge begins a merge with doc as source. It needs at least two
// documents in the listing; otherwise it does nothing and returns false.
func (m *Manager) StartMerge(doc documents.Document) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.docs) < 2 {
		return false
	}

	m.sel = Selection{Mode: Selecting, Source: &doc}
	return true
}

// SelectTarget picks the merge target and proposes a name. Picking the
// source itself, or calling outside a merge, is ignored and returns false.
// Picking again while confirming replaces the target.
func (m *Manager) SelectTarget(doc documents.Document) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sel.Mode == Idle || m.sel.Source == nil {
		return false
	}
	if doc.ID == m.sel.Source.ID {
		return false
	}

	m.sel.Target = &doc
	m.sel.ProposedName = DefaultMergeName(*m.sel.Source, doc)
	m.sel.Mode = Confirming
	return true
}

// SetMergeName replaces the proposed name.
func (m *Manager) SetMergeName(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sel.Mode != Confirming {
		return ErrNotConfirming
	}
	m.sel.ProposedName = name
	return nil
}

// CancelMerge abandons the merge workflow.
func (m *Manager) CancelMerge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sel = Selection{}
}

// PerformMerge merges the confirmed source and target. A blank name falls
// back to the default. Success returns to Idle and refreshes the listing;
// failure keeps the confirmation so it can be retried or cancelled.
func (m *Manager) PerformMerge(ctx context.Context) (*documents.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sel.Mode != Confirming || m.sel.Source == nil || m.sel.Target == nil {
		return nil, ErrNotConfirming
	}

	source, target := *m.sel.Source, *m.sel.Target
	name := strings.TrimSpace(m.sel.ProposedName)
	if name == "" {
		name = DefaultMergeName(source, target)
	}

	merged, err := m.merger.Merge(ctx, source, target, name)
	if err != nil {
		m.logger.Warn("merge failed", "source", source.ID, "target", target.ID, "error", err)
		return nil, err
	}

	m.sel = Selection{}
	if err := m.refresh(ctx); err != nil {
		m.logger.Warn("listing refresh after merge failed", "error", err)
	}
	return merged, nil
}

func involves(sel Selection, id uuid.UUID) bool {
	return (sel.Source != nil && sel.Source.ID == id) || (sel.Target != nil && sel.Target.ID == id)
}
