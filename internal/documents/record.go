package documents

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Record is the persisted layout of a document as read back from a backend.
// Every field is optional at this level; Document enforces which are required.
type Record struct {
	ID        *uuid.UUID `json:"id,omitempty"`
	Name      *string    `json:"name,omitempty"`
	FileType  *string    `json:"file_type,omitempty"`
	Data      []byte     `json:"data,omitempty"`
	Thumbnail []byte     `json:"thumbnail,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// NewRecord builds the persisted layout for a document.
func NewRecord(d Document) Record {
	id := d.ID
	name := d.Name
	fileType := d.FileType
	ts := d.Timestamp.UTC()

	return Record{
		ID:        &id,
		Name:      &name,
		FileType:  &fileType,
		Data:      d.Data,
		Thumbnail: d.Thumbnail,
		Timestamp: &ts,
	}
}

// Document maps the record to a Document.
// Returns ErrMapping naming the first missing required field.
func (r Record) Document() (Document, error) {
	switch {
	case r.ID == nil || *r.ID == uuid.Nil:
		return Document{}, fmt.Errorf("%w: id", ErrMapping)
	case r.Name == nil:
		return Document{}, fmt.Errorf("%w: name", ErrMapping)
	case r.FileType == nil:
		return Document{}, fmt.Errorf("%w: file_type", ErrMapping)
	case len(r.Data) == 0:
		return Document{}, fmt.Errorf("%w: data", ErrMapping)
	case r.Timestamp == nil || r.Timestamp.IsZero():
		return Document{}, fmt.Errorf("%w: timestamp", ErrMapping)
	}

	return Document{
		ID:        *r.ID,
		Name:      *r.Name,
		FileType:  *r.FileType,
		Data:      r.Data,
		Thumbnail: r.Thumbnail,
		Timestamp: *r.Timestamp,
	}, nil
}

// MapRecords converts records to documents, skipping and logging malformed ones.
func MapRecords(records []Record, logger *slog.Logger) []Document {
	docs := make([]Document, 0, len(records))
	for _, rec := range records {
		doc, err := rec.Document()
		if err != nil {
			logger.Warn("skipping malformed document record", "id", rec.ID, "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}
