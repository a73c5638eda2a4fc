package dynamo

import (
	"fmt"
	"time"

	"github.com/Bluenz7/pdfredactor/internal/documents"
	"github.com/google/uuid"
)

const keyAttribute = "id"

// item is the DynamoDB layout of a document. The timestamp is stored as
// RFC 3339 text in UTC.
type item struct {
	ID        string  `dynamodbav:"id"`
	Name      *string `dynamodbav:"name,omitempty"`
	FileType  *string `dynamodbav:"file_type,omitempty"`
	Data      []byte  `dynamodbav:"data,omitempty"`
	Thumbnail []byte  `dynamodbav:"thumbnail,omitempty"`
	Timestamp *string `dynamodbav:"timestamp,omitempty"`
}

func toItem(doc documents.Document) item {
	name := doc.Name
	fileType := doc.FileType
	ts := doc.Timestamp.UTC().Format(time.RFC3339Nano)

	return item{
		ID:        doc.ID.String(),
		Name:      &name,
		FileType:  &fileType,
		Data:      doc.Data,
		Thumbnail: doc.Thumbnail,
		Timestamp: &ts,
	}
}

func (it item) record() (documents.Record, error) {
	rec := documents.Record{
		Name:      it.Name,
		FileType:  it.FileType,
		Data:      it.Data,
		Thumbnail: it.Thumbnail,
	}

	if it.ID != "" {
		id, err := uuid.Parse(it.ID)
		if err != nil {
			return rec, fmt.Errorf("%w: id %q: %w", documents.ErrMapping, it.ID, err)
		}
		rec.ID = &id
	}

	if it.Timestamp != nil {
		ts, err := time.Parse(time.RFC3339Nano, *it.Timestamp)
		if err != nil {
			return rec, fmt.Errorf("%w: timestamp %q: %w", documents.ErrMapping, *it.Timestamp, err)
		}
		rec.Timestamp = &ts
	}

	return rec, nil
}
