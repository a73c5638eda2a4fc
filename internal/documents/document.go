// Package documents defines the persisted document model, the store contract
// backends implement, and the mapping between stored records and documents.
package documents

import (
	"bytes"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileTypePDF is the file type assigned to every document the engine produces.
const FileTypePDF = "pdf"

// Document represents a stored document.
// Data holds the encoded PDF and is authoritative; Thumbnail is a PNG of the
// first page regenerated whenever Data changes.
type Document struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	FileType  string    `json:"file_type"`
	Data      []byte    `json:"-"`
	Thumbnail []byte    `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

// New creates a document with a fresh identifier.
func New(name, fileType string, data, thumbnail []byte, timestamp time.Time) Document {
	return Document{
		ID:        uuid.New(),
		Name:      name,
		FileType:  fileType,
		Data:      data,
		Thumbnail: thumbnail,
		Timestamp: timestamp,
	}
}

// WithData returns a copy of the document carrying new bytes, thumbnail and timestamp.
// Identity, name and file type are preserved.
func (d Document) WithData(data, thumbnail []byte, timestamp time.Time) Document {
	d.Data = data
	d.Thumbnail = thumbnail
	d.Timestamp = timestamp
	return d
}

// Clone returns a deep copy so callers cannot alias stored byte slices.
func (d Document) Clone() Document {
	d.Data = bytes.Clone(d.Data)
	d.Thumbnail = bytes.Clone(d.Thumbnail)
	return d
}

// FileExtension derives a file extension from the file type.
// MIME-like values such as "application/pdf" yield their last segment.
func (d Document) FileExtension() string {
	ft := d.FileType
	if i := strings.LastIndex(ft, "/"); i >= 0 {
		ft = ft[i+1:]
	}
	if ft == "" {
		return FileTypePDF
	}
	return ft
}

// Filename returns the export name of the document.
func (d Document) Filename() string {
	return d.Name + "." + d.FileExtension()
}

// Summary is the listing projection of a document without its byte payloads.
type Summary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	FileType     string    `json:"file_type"`
	SizeBytes    int64     `json:"size_bytes"`
	HasThumbnail bool      `json:"has_thumbnail"`
	Timestamp    time.Time `json:"timestamp"`
}

// Summarize projects the document for listings.
func (d Document) Summarize() Summary {
	return Summary{
		ID:           d.ID,
		Name:         d.Name,
		FileType:     d.FileType,
		SizeBytes:    int64(len(d.Data)),
		HasThumbnail: len(d.Thumbnail) > 0,
		Timestamp:    d.Timestamp,
	}
}
