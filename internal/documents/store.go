package documents

import (
	"context"

	"github.com/google/uuid"
)

// Store defines CRUD-by-identifier persistence for documents.
// Implementations must be safe for concurrent use and wrap backend
// failures other than not-found and duplicate in ErrPersistence.
type Store interface {
	// Create persists a new document.
	// Returns ErrDuplicate if a document with the same ID exists.
	Create(ctx context.Context, doc Document) error

	// Update replaces an existing document.
	// Returns ErrNotFound if no document with that ID exists; it never creates one.
	Update(ctx context.Context, doc Document) error

	// Fetch retrieves a document by ID.
	// Returns ErrNotFound if absent and ErrMapping if the stored record is malformed.
	Fetch(ctx context.Context, id uuid.UUID) (Document, error)

	// List returns every well-formed document in unspecified order.
	// Malformed records are skipped rather than failing the listing.
	List(ctx context.Context) ([]Document, error)

	// Delete removes a document by ID.
	// Returns ErrNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error

	// Clear removes every document.
	Clear(ctx context.Context) error
}
