package codec

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"log/slog"
	"slices"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// pdf implements System on top of pdfcpu.
// Page indices are zero-based at this API and converted to pdfcpu's
// one-based page selections internally.
type pdf struct {
	renderer Renderer
	cfg      Config
	logger   *slog.Logger
}

func newPDF(renderer Renderer, cfg Config, logger *slog.Logger) *pdf {
	api.DisableConfigDir()

	return &pdf{
		renderer: renderer,
		cfg:      cfg,
		logger:   logger,
	}
}

func newConfiguration() *model.Configuration {
	return model.NewDefaultConfiguration()
}

func (p *pdf) Encode(images []image.Image, pageSize *Size) ([]byte, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}

	box := sizeOf(images[0])
	if pageSize != nil && !pageSize.IsZero() {
		box = *pageSize
	}
	if box.IsZero() {
		box = DefaultPageSize
	}

	// pos:full sizes each page to its image, so images are fitted to the box first.
	imp, err := api.Import("pos:full", types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("%w: import config: %v", ErrEncodeFailed, err)
	}

	readers := make([]io.Reader, 0, len(images))
	for i, img := range images {
		var buf bytes.Buffer
		if err := encodePNG(&buf, scale(img, box)); err != nil {
			return nil, fmt.Errorf("%w: image %d: %v", ErrEncodeFailed, i, err)
		}
		readers = append(readers, &buf)
	}

	var out bytes.Buffer
	if err := api.ImportImages(nil, &out, readers, imp, newConfiguration()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}

	p.logger.Debug("encoded images", "pages", len(images), "width", box.Width, "height", box.Height)
	return out.Bytes(), nil
}

func (p *pdf) Decode(data []byte) (*PageSet, error) {
	boxes, err := mediaBoxes(data)
	if err != nil {
		return nil, err
	}

	return &PageSet{
		data:     bytes.Clone(data),
		boxes:    boxes,
		renderer: p.renderer,
		cfg:      p.cfg,
	}, nil
}

func (p *pdf) PageCount(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, ErrInvalidData
	}

	count, err := api.PageCount(bytes.NewReader(data), newConfiguration())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return count, nil
}

func (p *pdf) RemovePage(data []byte, index int) ([]byte, error) {
	count, err := p.PageCount(data)
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= count {
		return nil, fmt.Errorf("%w: index %d, page count %d", ErrIndexOutOfRange, index, count)
	}
	if count == 1 {
		boxes, err := mediaBoxes(data)
		if err != nil {
			return nil, err
		}
		p.logger.Debug("removed page", "index", index, "pages", 0)
		return emptyDocument(boxes[0])
	}

	var out bytes.Buffer
	if err := api.RemovePages(bytes.NewReader(data), &out, selection(index), newConfiguration()); err != nil {
		return nil, fmt.Errorf("remove page %d: %w", index, err)
	}

	p.logger.Debug("removed page", "index", index, "pages", count-1)
	return out.Bytes(), nil
}

func (p *pdf) ExtractPages(data []byte, indices []int) ([]byte, error) {
	count, err := p.PageCount(data)
	if err != nil {
		return nil, err
	}

	valid := make([]int, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < count {
			valid = append(valid, i)
		}
	}
	slices.Sort(valid)
	valid = slices.Compact(valid)

	if len(valid) == 0 {
		return nil, ErrEmptySelection
	}

	var out bytes.Buffer
	if err := api.Trim(bytes.NewReader(data), &out, selection(valid...), newConfiguration()); err != nil {
		return nil, fmt.Errorf("extract pages: %w", err)
	}
	return out.Bytes(), nil
}

func (p *pdf) RotatePage(data []byte, index, degrees int) ([]byte, error) {
	if degrees%90 != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRotation, degrees)
	}

	count, err := p.PageCount(data)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= count {
		return nil, fmt.Errorf("%w: index %d, page count %d", ErrIndexOutOfRange, index, count)
	}

	rotation := ((degrees % 360) + 360) % 360
	if rotation == 0 {
		return bytes.Clone(data), nil
	}

	var out bytes.Buffer
	if err := api.Rotate(bytes.NewReader(data), &out, rotation, selection(index), newConfiguration()); err != nil {
		return nil, fmt.Errorf("rotate page %d: %w", index, err)
	}
	return out.Bytes(), nil
}

func (p *pdf) Concat(docs ...[]byte) ([]byte, error) {
	if len(docs) == 0 {
		return nil, ErrEmptySelection
	}

	readers := make([]io.ReadSeeker, 0, len(docs))
	for i, d := range docs {
		if _, err := p.PageCount(d); err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		readers = append(readers, bytes.NewReader(d))
	}

	if len(readers) == 1 {
		return bytes.Clone(docs[0]), nil
	}

	var out bytes.Buffer
	if err := api.MergeRaw(readers, &out, false, newConfiguration()); err != nil {
		return nil, fmt.Errorf("concat documents: %w", err)
	}
	return out.Bytes(), nil
}

func (p *pdf) Thumbnail(data []byte) (image.Image, error) {
	set, err := p.Decode(data)
	if err != nil {
		return nil, err
	}

	if set.Count() == 0 {
		return nil, nil
	}

	box := set.boxes[0]
	return set.Rasterize(0, box.Scale(ThumbnailScale))
}

func (p *pdf) ThumbnailPNG(data []byte) ([]byte, error) {
	img, err := p.Thumbnail(data)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, nil
	}

	var buf bytes.Buffer
	if err := encodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// emptyDocument writes a document whose page tree has no kids. box becomes
// the inherited media box of the page root.
func emptyDocument(box Size) ([]byte, error) {
	ctx, err := pdfcpu.CreateContextWithXRefTable(newConfiguration(), &types.Dim{Width: box.Width, Height: box.Height})
	if err != nil {
		return nil, fmt.Errorf("%w: empty document: %v", ErrEncodeFailed, err)
	}

	var out bytes.Buffer
	if err := api.WriteContext(ctx, &out); err != nil {
		return nil, fmt.Errorf("%w: empty document: %v", ErrEncodeFailed, err)
	}
	return out.Bytes(), nil
}

func mediaBoxes(data []byte) ([]Size, error) {
	if len(data) == 0 {
		return nil, ErrInvalidData
	}

	dims, err := api.PageDims(bytes.NewReader(data), newConfiguration())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	boxes := make([]Size, len(dims))
	for i, d := range dims {
		boxes[i] = Size{Width: d.Width, Height: d.Height}
	}
	return boxes, nil
}

// selection converts zero-based indices to pdfcpu page selection expressions.
func selection(indices ...int) []string {
	pages := make([]string, len(indices))
	for i, idx := range indices {
		pages[i] = strconv.Itoa(idx + 1)
	}
	return pages
}
