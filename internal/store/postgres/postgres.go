// Package postgres implements documents.Store with document metadata in
// postgres and payloads in blob storage.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Bluenz7/pdfredactor/internal/documents"
	"github.com/Bluenz7/pdfredactor/internal/storage"
	"github.com/Bluenz7/pdfredactor/pkg/repository"
	"github.com/google/uuid"
)

const projection = `id, name, file_type, has_thumbnail, timestamp`

type store struct {
	db     *sql.DB
	blobs  storage.System
	logger *slog.Logger
}

// New creates a postgres-backed store.
func New(db *sql.DB, blobs storage.System, logger *slog.Logger) documents.Store {
	return &store{
		db:     db,
		blobs:  blobs,
		logger: logger.With("system", "store", "backend", "postgres"),
	}
}

// Create inserts the row and writes the blobs in one transaction; a blob
// failure rolls the row back.
func (s *store) Create(ctx context.Context, doc documents.Document) error {
	q := `
		INSERT INTO documents (id, name, file_type, size_bytes, has_thumbnail, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		if _, err := tx.ExecContext(ctx, q, doc.ID, doc.Name, doc.FileType,
			len(doc.Data), len(doc.Thumbnail) > 0, doc.Timestamp.UTC()); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, s.writeBlobs(ctx, doc)
	})
	if err != nil {
		return s.mapError(err, doc.ID)
	}

	s.logger.Info("document created", "id", doc.ID, "name", doc.Name)
	return nil
}

func (s *store) Update(ctx context.Context, doc documents.Document) error {
	q := `
		UPDATE documents
		SET name = $2, file_type = $3, size_bytes = $4, has_thumbnail = $5, timestamp = $6
		WHERE id = $1`

	_, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(ctx, tx, q, doc.ID, doc.Name, doc.FileType,
			len(doc.Data), len(doc.Thumbnail) > 0, doc.Timestamp.UTC()); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, s.writeBlobs(ctx, doc)
	})
	if err != nil {
		return s.mapError(err, doc.ID)
	}

	s.logger.Info("document updated", "id", doc.ID)
	return nil
}

func (s *store) Fetch(ctx context.Context, id uuid.UUID) (documents.Document, error) {
	q := `SELECT ` + projection + ` FROM documents WHERE id = $1`

	row, err := repository.QueryOne(ctx, s.db, q, []any{id}, scanRow)
	if err != nil {
		return documents.Document{}, s.mapError(err, id)
	}

	rec, err := s.record(ctx, row)
	if err != nil {
		return documents.Document{}, err
	}
	return rec.Document()
}

func (s *store) List(ctx context.Context) ([]documents.Document, error) {
	q := `SELECT ` + projection + ` FROM documents`

	rows, err := repository.QueryMany(ctx, s.db, q, nil, scanRow)
	if err != nil {
		return nil, fmt.Errorf("%w: list documents: %w", documents.ErrPersistence, err)
	}

	records := make([]documents.Record, 0, len(rows))
	for _, r := range rows {
		rec, err := s.record(ctx, r)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return documents.MapRecords(records, s.logger), nil
}

func (s *store) Delete(ctx context.Context, id uuid.UUID) error {
	if err := repository.ExecExpectOne(ctx, s.db, `DELETE FROM documents WHERE id = $1`, id); err != nil {
		return s.mapError(err, id)
	}

	if err := s.blobs.DeletePrefix(ctx, storage.DocumentPrefix(id)); err != nil {
		s.logger.Warn("orphaned document blobs", "id", id, "error", err)
	}

	s.logger.Info("document deleted", "id", id)
	return nil
}

func (s *store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("%w: clear documents: %w", documents.ErrPersistence, err)
	}

	if err := s.blobs.DeletePrefix(ctx, storage.DocumentsPrefix); err != nil {
		s.logger.Warn("orphaned document blobs", "error", err)
	}

	s.logger.Info("documents cleared")
	return nil
}

func (s *store) writeBlobs(ctx context.Context, doc documents.Document) error {
	if err := s.blobs.Store(ctx, storage.DataKey(doc.ID), doc.Data); err != nil {
		return fmt.Errorf("store data: %w", err)
	}

	if len(doc.Thumbnail) == 0 {
		if err := s.blobs.Delete(ctx, storage.ThumbnailKey(doc.ID)); err != nil {
			return fmt.Errorf("delete thumbnail: %w", err)
		}
		return nil
	}

	if err := s.blobs.Store(ctx, storage.ThumbnailKey(doc.ID), doc.Thumbnail); err != nil {
		return fmt.Errorf("store thumbnail: %w", err)
	}
	return nil
}

// record joins a row with its blobs. A missing data blob leaves Data empty,
// which Record.Document reports as a mapping failure.
func (s *store) record(ctx context.Context, r row) (documents.Record, error) {
	rec := r.Record
	if rec.ID == nil {
		return rec, nil
	}
	id := *rec.ID

	data, err := s.blobs.Retrieve(ctx, storage.DataKey(id))
	switch {
	case err == nil:
		rec.Data = data
	case !errors.Is(err, storage.ErrNotFound):
		return rec, fmt.Errorf("%w: read data %s: %w", documents.ErrPersistence, id, err)
	}

	if r.HasThumbnail {
		thumb, err := s.blobs.Retrieve(ctx, storage.ThumbnailKey(id))
		switch {
		case err == nil:
			rec.Thumbnail = thumb
		case errors.Is(err, storage.ErrNotFound):
			s.logger.Warn("thumbnail blob missing", "id", id)
		default:
			return rec, fmt.Errorf("%w: read thumbnail %s: %w", documents.ErrPersistence, id, err)
		}
	}

	return rec, nil
}

func (s *store) mapError(err error, id uuid.UUID) error {
	mapped := repository.MapError(err, documents.ErrNotFound, documents.ErrDuplicate)
	if errors.Is(mapped, documents.ErrNotFound) || errors.Is(mapped, documents.ErrDuplicate) {
		return fmt.Errorf("%w: %s", mapped, id)
	}
	return fmt.Errorf("%w: %s: %w", documents.ErrPersistence, id, err)
}
