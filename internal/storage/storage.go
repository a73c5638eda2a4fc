// Package storage keeps document payloads (PDF bytes and thumbnails) as blobs
// addressed by slash-separated keys.
package storage

import (
	"context"
	"path"

	"github.com/Bluenz7/pdfredactor/internal/lifecycle"
	"github.com/google/uuid"
)

// System stores and retrieves blobs.
type System interface {
	// Store writes data at key, replacing existing contents atomically.
	Store(ctx context.Context, key string, data []byte) error

	// Retrieve returns the data at key or ErrNotFound.
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every blob under prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Start creates the base directory once the coordinator starts.
	Start(lc *lifecycle.Coordinator) error
}

// DocumentsPrefix is the key prefix shared by every document blob.
const DocumentsPrefix = "documents"

// DataKey is the blob key of a document's PDF bytes.
func DataKey(id uuid.UUID) string {
	return path.Join(DocumentsPrefix, id.String(), "data.pdf")
}

// ThumbnailKey is the blob key of a document's thumbnail.
func ThumbnailKey(id uuid.UUID) string {
	return path.Join(DocumentsPrefix, id.String(), "thumbnail.png")
}

// DocumentPrefix is the key prefix holding every blob of one document.
func DocumentPrefix(id uuid.UUID) string {
	return path.Join(DocumentsPrefix, id.String())
}
