package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RotateRequest rotates one page clockwise.
type RotateRequest struct {
	Degrees int `json:"degrees" validate:"required"`
}

// ExtractRequest copies the pages named by a one-based range expression
// such as "1-3,5" into a new document.
type ExtractRequest struct {
	Pages string `json:"pages" validate:"required"`
	Name  string `json:"name" validate:"required,max=255"`
}

func (r *ExtractRequest) normalize() {
	r.Pages = strings.TrimSpace(r.Pages)
	r.Name = strings.TrimSpace(r.Name)
}

// MergeRequest merges the pages of source then target into a new document.
// A blank name falls back to "<source> + <target>".
type MergeRequest struct {
	SourceID string `json:"source_id" validate:"required,uuid"`
	TargetID string `json:"target_id" validate:"required,uuid,nefield=SourceID"`
	Name     string `json:"name" validate:"max=255"`
}

func (r *MergeRequest) normalize() {
	r.SourceID = strings.TrimSpace(r.SourceID)
	r.TargetID = strings.TrimSpace(r.TargetID)
	r.Name = strings.TrimSpace(r.Name)
}

type normalizer interface {
	normalize()
}

// decodeRequest reads a JSON body into T, trims it when T supports that, and validates it.
func decodeRequest[T any](r *http.Request) (T, error) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if n, ok := any(&req).(normalizer); ok {
		n.normalize()
	}
	if err := validate.Struct(req); err != nil {
		return req, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return req, nil
}

// pageIndex reads the zero-based {index} path value.
func pageIndex(r *http.Request) (int, error) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		return 0, fmt.Errorf("%w: page index %q", ErrInvalidRequest, r.PathValue("index"))
	}
	return index, nil
}

// previewWidth reads the optional width query parameter. Zero means the
// page's natural size.
func previewWidth(r *http.Request, limit float64) (float64, error) {
	raw := r.URL.Query().Get("width")
	if raw == "" {
		return 0, nil
	}
	width, err := strconv.ParseFloat(raw, 64)
	if err != nil || width <= 0 || width > limit {
		return 0, fmt.Errorf("%w: width must be between 0 and %v", ErrInvalidRequest, limit)
	}
	return width, nil
}
