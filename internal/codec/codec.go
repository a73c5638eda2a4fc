package codec

import (
	"image"
	"log/slog"
	"runtime"
)

// ThumbnailScale is the fraction of the first page's media box used for thumbnails.
const ThumbnailScale = 0.25

// DefaultPageSize is the page box used when no image provides a natural size (US Letter).
var DefaultPageSize = Size{Width: 612, Height: 792}

// Size is a two-dimensional extent in PDF points. Raster images map one pixel to one point.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Scale returns the size multiplied by f.
func (s Size) Scale(f float64) Size {
	return Size{Width: s.Width * f, Height: s.Height * f}
}

// FitWidth returns a size of the given width preserving the aspect ratio of s.
func (s Size) FitWidth(width float64) Size {
	if s.Width <= 0 {
		return Size{Width: width, Height: width}
	}
	return Size{Width: width, Height: s.Height * (width / s.Width)}
}

// IsZero reports whether either dimension is not positive.
func (s Size) IsZero() bool {
	return s.Width <= 0 || s.Height <= 0
}

func sizeOf(img image.Image) Size {
	b := img.Bounds()
	return Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// System defines the PDF codec operations consumed by the editing engine.
type System interface {
	// Encode renders images into a PDF with one page per image, in order.
	// All pages share one page box: pageSize when non-nil, otherwise the first
	// image's natural size. Images fill the page box.
	Encode(images []image.Image, pageSize *Size) ([]byte, error)

	// Decode parses data into a PageSet.
	// Returns ErrInvalidData if data is not a parseable document.
	Decode(data []byte) (*PageSet, error)

	// PageCount returns the number of pages in data.
	PageCount(data []byte) (int, error)

	// RemovePage returns a copy of data without the page at index (zero-based).
	// Removing the only page yields a valid document with zero pages.
	// Returns ErrIndexOutOfRange for an invalid index.
	RemovePage(data []byte, index int) ([]byte, error)

	// ExtractPages returns a document containing the pages at indices in
	// ascending order. Out-of-range and duplicate indices are skipped.
	// Returns ErrEmptySelection if no index is valid.
	ExtractPages(data []byte, indices []int) ([]byte, error)

	// RotatePage returns a copy of data with the page at index rotated clockwise by degrees.
	RotatePage(data []byte, index, degrees int) ([]byte, error)

	// Concat returns a document with the pages of every input in argument order.
	Concat(docs ...[]byte) ([]byte, error)

	// Thumbnail rasterizes the first page at ThumbnailScale of its media box.
	// Returns a nil image if the document has no pages.
	Thumbnail(data []byte) (image.Image, error)

	// ThumbnailPNG is Thumbnail encoded as PNG; nil when there is no page.
	ThumbnailPNG(data []byte) ([]byte, error)
}

// Config tunes rasterization.
type Config struct {
	// MinDPI and MaxDPI bound the resolution requested from the renderer.
	MinDPI int
	MaxDPI int

	// Workers bounds parallel page rasterization. Zero uses runtime.NumCPU.
	Workers int
}

func (c Config) withDefaults() Config {
	if c.MinDPI <= 0 {
		c.MinDPI = 36
	}
	if c.MaxDPI <= 0 {
		c.MaxDPI = 600
	}
	if c.MaxDPI < c.MinDPI {
		c.MaxDPI = c.MinDPI
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	return c
}

// New creates a PDF codec that rasterizes through renderer.
func New(renderer Renderer, cfg Config, logger *slog.Logger) System {
	return newPDF(renderer, cfg.withDefaults(), logger.With("system", "codec"))
}
