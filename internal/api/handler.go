package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Bluenz7/pdfredactor/internal/codec"
	"github.com/Bluenz7/pdfredactor/internal/collection"
	"github.com/Bluenz7/pdfredactor/internal/documents"
	"github.com/Bluenz7/pdfredactor/internal/editor"
	"github.com/Bluenz7/pdfredactor/internal/merge"
	"github.com/Bluenz7/pdfredactor/internal/session"
	"github.com/Bluenz7/pdfredactor/pkg/handlers"
	"github.com/Bluenz7/pdfredactor/pkg/pagination"
	"github.com/Bluenz7/pdfredactor/pkg/routes"
	"github.com/google/uuid"
)

const maxPreviewWidth = 4096

// Handler provides HTTP endpoints for the document collection and page editing.
type Handler struct {
	store      documents.Store
	codec      codec.System
	collection *collection.Manager
	merge      *merge.Engine
	logger     *slog.Logger
	pagination pagination.Config
	maxUpload  int64
	now        func() time.Time

	// mergeMu serializes the merge workflow, which keeps one selection.
	mergeMu sync.Mutex
}

// NewHandler creates the document handler.
func NewHandler(runtime *Runtime, domain *Domain) *Handler {
	return &Handler{
		store:      runtime.Store,
		codec:      runtime.Codec,
		collection: domain.Collection,
		merge:      domain.Merge,
		logger:     runtime.Logger.With("handler", "documents"),
		pagination: runtime.Pagination,
		maxUpload:  runtime.MaxUploadSize,
		now:        runtime.Now,
	}
}

// Routes returns the document endpoint route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/documents",
		Tags:        []string{"Documents"},
		Description: "Document import, export, editing and merging",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, Summary: "List documents, newest first"},
			{Method: "POST", Pattern: "", Handler: h.Upload, Summary: "Create a document from images or a PDF"},
			{Method: "DELETE", Pattern: "", Handler: h.Clear, Summary: "Delete every document"},
			{Method: "POST", Pattern: "/merge", Handler: h.Merge, Summary: "Merge two documents into a new one"},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, Summary: "Get document metadata"},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, Summary: "Delete a document"},
			{Method: "GET", Pattern: "/{id}/data", Handler: h.Download, Summary: "Download the PDF"},
			{Method: "GET", Pattern: "/{id}/thumbnail", Handler: h.Thumbnail, Summary: "First page thumbnail"},
			{Method: "POST", Pattern: "/{id}/extract", Handler: h.Extract, Summary: "Copy pages into a new document"},
		},
		Children: []routes.Group{
			{
				Prefix:      "/{id}/pages/{index}",
				Description: "Single page operations",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "/image", Handler: h.PageImage, Summary: "Rasterize a page"},
					{Method: "DELETE", Pattern: "", Handler: h.DeletePage, Summary: "Delete a page"},
					{Method: "POST", Pattern: "/rotate", Handler: h.RotatePage, Summary: "Rotate a page"},
				},
			},
		},
	}
}

// List handles GET /documents.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	if err := h.collection.Refresh(r.Context()); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	var summaries []documents.Summary
	for _, doc := range h.collection.Documents() {
		if page.Matches(doc.Name) {
			summaries = append(summaries, doc.Summarize())
		}
	}

	handlers.RespondJSON(w, http.StatusOK, pagination.Paginate(summaries, page))
}

// Upload handles POST /documents. The multipart form carries one or more
// images, or exactly one PDF, under "files" and an optional "name".
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %w", ErrInvalidFile, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: no files", ErrInvalidFile))
		return
	}

	payloads := make([][]byte, len(files))
	for i, fh := range files {
		data, err := readPart(fh)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
		payloads[i] = data
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = strings.TrimSuffix(files[0].Filename, filepath.Ext(files[0].Filename))
	}

	var (
		doc documents.Document
		err error
	)
	if isPDF(payloads[0]) {
		if len(payloads) > 1 {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: a pdf must be uploaded alone", ErrInvalidFile))
			return
		}
		doc, err = h.importPDF(name, payloads[0])
	} else {
		doc, err = h.importImages(name, payloads)
	}
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if err := h.collection.Save(r.Context(), doc); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, doc.Summarize())
}

// Clear handles DELETE /documents.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.collection.Clear(r.Context()); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondNoContent(w)
}

// Find handles GET /documents/{id}.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.fetch(w, r)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, doc.Summarize())
}

// Delete handles DELETE /documents/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %w", ErrInvalidRequest, err))
		return
	}

	if err := h.collection.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondNoContent(w)
}

// Download handles GET /documents/{id}/data.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.fetch(w, r)
	if !ok {
		return
	}
	handlers.RespondBinary(w, "application/pdf", doc.Filename(), doc.Data)
}

// Thumbnail handles GET /documents/{id}/thumbnail.
func (h *Handler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.fetch(w, r)
	if !ok {
		return
	}
	if len(doc.Thumbnail) == 0 {
		handlers.RespondError(w, h.logger, http.StatusNotFound, fmt.Errorf("%w: %s", ErrNoThumbnail, doc.ID))
		return
	}
	respondPNG(w, doc.Thumbnail)
}

// PageImage handles GET /documents/{id}/pages/{index}/image?width=.
func (h *Handler) PageImage(w http.ResponseWriter, r *http.Request) {
	index, err := pageIndex(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	width, err := previewWidth(r, maxPreviewWidth)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	doc, ok := h.fetch(w, r)
	if !ok {
		return
	}

	set, err := h.codec.Decode(doc.Data)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	box, err := set.MediaBox(index)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	target := box
	if width > 0 {
		target = box.FitWidth(width)
	}

	img, err := set.Rasterize(index, target)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	var buf bytes.Buffer
	if err := codec.EncodePNG(&buf, img); err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	respondPNG(w, buf.Bytes())
}

// DeletePage handles DELETE /documents/{id}/pages/{index}.
func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	index, err := pageIndex(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	doc, ok := h.fetch(w, r)
	if !ok {
		return
	}

	ed := editor.NewSaved(doc, h.codec, h.store, h.logger)
	applied, err := ed.DeletePage(r.Context(), index)
	h.respondEdit(w, ed, applied, err)
}

// RotatePage handles POST /documents/{id}/pages/{index}/rotate.
func (h *Handler) RotatePage(w http.ResponseWriter, r *http.Request) {
	index, err := pageIndex(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req, err := decodeRequest[RotateRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	doc, ok := h.fetch(w, r)
	if !ok {
		return
	}

	ed := editor.NewSaved(doc, h.codec, h.store, h.logger)
	if !ed.Select(index) {
		err := fmt.Errorf("%w: index %d", codec.ErrIndexOutOfRange, index)
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	applied, err := ed.RotateSelectedPage(r.Context(), req.Degrees)
	h.respondEdit(w, ed, applied, err)
}

// Extract handles POST /documents/{id}/extract.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest[ExtractRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	doc, ok := h.fetch(w, r)
	if !ok {
		return
	}

	count, err := h.codec.PageCount(doc.Data)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	indices, err := codec.ParsePageRange(req.Pages, count)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	data, err := h.codec.ExtractPages(doc.Data, indices)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	extracted := documents.New(req.Name, documents.FileTypePDF, data, h.thumbnail(req.Name, data), h.now())
	if err := h.collection.Save(r.Context(), extracted); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, extracted.Summarize())
}

// Merge handles POST /documents/merge by running the collection's merge
// workflow: start with the source, pick the target, confirm.
func (h *Handler) Merge(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest[MergeRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	h.mergeMu.Lock()
	defer h.mergeMu.Unlock()

	ctx := r.Context()
	if err := h.collection.Refresh(ctx); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	source, err := h.cached(req.SourceID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	target, err := h.cached(req.TargetID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if !h.collection.StartMerge(source) {
		handlers.RespondError(w, h.logger, http.StatusConflict, ErrMergeUnavailable)
		return
	}
	defer h.collection.CancelMerge()

	if !h.collection.SelectTarget(target) {
		err := fmt.Errorf("%w: source and target are the same document", ErrInvalidRequest)
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if req.Name != "" {
		if err := h.collection.SetMergeName(req.Name); err != nil {
			handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
			return
		}
	}

	merged, err := h.collection.PerformMerge(ctx)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, merged.Summarize())
}

func (h *Handler) fetch(w http.ResponseWriter, r *http.Request) (documents.Document, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %w", ErrInvalidRequest, err))
		return documents.Document{}, false
	}

	doc, err := h.store.Fetch(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return documents.Document{}, false
	}
	return doc, true
}

func (h *Handler) cached(raw string) (documents.Document, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return documents.Document{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	doc, ok := h.collection.Find(id)
	if !ok {
		return documents.Document{}, fmt.Errorf("%w: %s", documents.ErrNotFound, id)
	}
	return doc, nil
}

// respondEdit reports the outcome of an editor mutation. An applied edit
// whose source turned ephemeral means the document vanished mid-edit.
func (h *Handler) respondEdit(w http.ResponseWriter, ed *editor.Editor, applied bool, err error) {
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	if !applied {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, errors.New("edit not applied"))
		return
	}

	saved, ok := ed.Source().(editor.Saved)
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusNotFound, documents.ErrNotFound)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, saved.Document.Summarize())
}

func (h *Handler) importPDF(name string, data []byte) (documents.Document, error) {
	if name == "" {
		return documents.Document{}, session.ErrEmptyName
	}
	if _, err := h.codec.PageCount(data); err != nil {
		return documents.Document{}, err
	}
	return documents.New(name, documents.FileTypePDF, data, h.thumbnail(name, data), h.now()), nil
}

func (h *Handler) importImages(name string, payloads [][]byte) (documents.Document, error) {
	draft := session.NewDraft(h.codec, nil, h.logger)
	draft.SetName(name)

	for i, data := range payloads {
		img, err := codec.DecodeImage(bytes.NewReader(data))
		if err != nil {
			return documents.Document{}, fmt.Errorf("%w: file %d: %w", ErrInvalidFile, i, err)
		}
		if _, err := draft.Append(img); err != nil {
			return documents.Document{}, err
		}
	}

	if !draft.CanGenerate() {
		return documents.Document{}, session.ErrEmptyName
	}
	return draft.Document()
}

func (h *Handler) thumbnail(name string, data []byte) []byte {
	thumb, err := h.codec.ThumbnailPNG(data)
	if err != nil {
		h.logger.Warn("thumbnail generation failed", "name", name, "error", err)
		return nil
	}
	return thumb
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFile, fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFile, fh.Filename, err)
	}
	return data, nil
}

func isPDF(data []byte) bool {
	return http.DetectContentType(data) == "application/pdf"
}

func respondPNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
