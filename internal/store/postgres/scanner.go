package postgres

import (
	"github.com/Bluenz7/pdfredactor/internal/documents"
	"github.com/Bluenz7/pdfredactor/pkg/repository"
)

type row struct {
	documents.Record
	HasThumbnail bool
}

func scanRow(s repository.Scanner) (row, error) {
	var r row
	err := s.Scan(&r.ID, &r.Name, &r.FileType, &r.HasThumbnail, &r.Timestamp)
	return r, err
}
