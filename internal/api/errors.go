package api

import (
	"errors"
	"net/http"

	"github.com/Bluenz7/pdfredactor/internal/codec"
	"github.com/Bluenz7/pdfredactor/internal/collection"
	"github.com/Bluenz7/pdfredactor/internal/documents"
	"github.com/Bluenz7/pdfredactor/internal/editor"
	"github.com/Bluenz7/pdfredactor/internal/session"
)

// Request errors raised by the HTTP layer.
var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidFile      = errors.New("invalid file")
	ErrFileTooLarge     = errors.New("file exceeds maximum upload size")
	ErrNoThumbnail      = errors.New("document has no thumbnail")
	ErrMergeUnavailable = errors.New("merge needs at least two stored documents")
)

var statuses = []struct {
	err    error
	status int
}{
	{documents.ErrNotFound, http.StatusNotFound},
	{documents.ErrDuplicate, http.StatusConflict},
	{codec.ErrInvalidData, http.StatusUnprocessableEntity},
	{codec.ErrIndexOutOfRange, http.StatusNotFound},
	{codec.ErrEmptySelection, http.StatusBadRequest},
	{codec.ErrInvalidPageRange, http.StatusBadRequest},
	{codec.ErrInvalidRotation, http.StatusBadRequest},
	{codec.ErrNoImages, http.StatusBadRequest},
	{editor.ErrNoSelection, http.StatusConflict},
	{editor.ErrInvalidWidth, http.StatusBadRequest},
	{collection.ErrNotConfirming, http.StatusConflict},
	{session.ErrEmptyName, http.StatusBadRequest},
	{session.ErrNoPages, http.StatusBadRequest},
	{ErrInvalidRequest, http.StatusBadRequest},
	{ErrInvalidFile, http.StatusBadRequest},
	{ErrFileTooLarge, http.StatusRequestEntityTooLarge},
	{ErrNoThumbnail, http.StatusNotFound},
	{ErrMergeUnavailable, http.StatusConflict},
}

// MapHTTPStatus converts domain errors to HTTP status codes. Persistence,
// mapping and render failures fall through to 500.
func MapHTTPStatus(err error) int {
	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}
