// Package codectest provides a codec.Renderer that needs no external tools.
package codectest

import (
	"errors"
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/Bluenz7/pdfredactor/internal/codec"
)

// ErrRenderer is returned by a failing Renderer.
var ErrRenderer = errors.New("codectest: render failure")

// Renderer produces solid images whose size follows the requested dpi.
// The codec scales them to the requested target.
type Renderer struct {
	Fill color.Color

	mu    sync.Mutex
	fail  bool
	opens atomic.Int64
	pages atomic.Int64
}

// NewRenderer creates a Renderer that paints every page with fill.
func NewRenderer(fill color.Color) *Renderer {
	return &Renderer{Fill: fill}
}

// SetFail makes subsequent rasterization calls fail with ErrRenderer.
func (r *Renderer) SetFail(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = fail
}

// Opens returns how many documents have been opened.
func (r *Renderer) Opens() int64 {
	return r.opens.Load()
}

// Pages returns how many pages have been rasterized.
func (r *Renderer) Pages() int64 {
	return r.pages.Load()
}

func (r *Renderer) failing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fail
}

func (r *Renderer) Open(data []byte) (codec.Rasterizer, error) {
	if len(data) == 0 {
		return nil, codec.ErrInvalidData
	}
	r.opens.Add(1)
	return &rasterizer{parent: r}, nil
}

type rasterizer struct {
	parent *Renderer
}

func (z *rasterizer) Rasterize(index, dpi int) (image.Image, error) {
	if z.parent.failing() {
		return nil, ErrRenderer
	}
	z.parent.pages.Add(1)

	side := max(dpi, 1)
	fill := z.parent.Fill
	if fill == nil {
		fill = color.White
	}

	img := image.NewRGBA(image.Rect(0, 0, side, side))
	for y := range side {
		for x := range side {
			img.Set(x, y, fill)
		}
	}
	return img, nil
}

func (z *rasterizer) Close() error {
	return nil
}
