package codec

import (
	"context"
	"fmt"
	"image"
	"math"

	"golang.org/x/sync/errgroup"
)

// PageSet is a decoded document: its page count, per-page media boxes and
// access to page rasterization.
type PageSet struct {
	data     []byte
	boxes    []Size
	renderer Renderer
	cfg      Config
}

// Count returns the number of pages.
func (s *PageSet) Count() int {
	return len(s.boxes)
}

// MediaBox returns the media box of the page at index.
func (s *PageSet) MediaBox(index int) (Size, error) {
	if index < 0 || index >= len(s.boxes) {
		return Size{}, fmt.Errorf("%w: index %d, page count %d", ErrIndexOutOfRange, index, len(s.boxes))
	}
	return s.boxes[index], nil
}

// MediaBoxes returns the media boxes of every page in order.
func (s *PageSet) MediaBoxes() []Size {
	out := make([]Size, len(s.boxes))
	copy(out, s.boxes)
	return out
}

// Rasterize renders the page at index to an image of exactly target size.
// A zero target renders at the page's media box size.
func (s *PageSet) Rasterize(index int, target Size) (image.Image, error) {
	box, err := s.MediaBox(index)
	if err != nil {
		return nil, err
	}

	r, err := s.renderer.Open(s.data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	defer r.Close()

	return s.rasterize(r, index, box, target)
}

// RasterizeWidth renders every page at the given width, preserving each
// page's aspect ratio. Pages are rendered by a bounded pool of workers, each
// holding its own open document; results are returned in page order.
func (s *PageSet) RasterizeWidth(ctx context.Context, width float64) ([]image.Image, error) {
	n := s.Count()
	results := make([]image.Image, n)
	if n == 0 {
		return results, nil
	}

	tasks := make(chan int, n)
	for i := range n {
		tasks <- i
	}
	close(tasks)

	g, ctx := errgroup.WithContext(ctx)
	for range min(s.cfg.Workers, n) {
		g.Go(func() error {
			r, err := s.renderer.Open(s.data)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrRenderFailed, err)
			}
			defer r.Close()

			for index := range tasks {
				if err := ctx.Err(); err != nil {
					return err
				}

				box := s.boxes[index]
				img, err := s.rasterize(r, index, box, box.FitWidth(width))
				if err != nil {
					return err
				}
				results[index] = img
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *PageSet) rasterize(r Rasterizer, index int, box, target Size) (image.Image, error) {
	if target.IsZero() {
		target = box
	}

	img, err := r.Rasterize(index, s.dpi(box, target))
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %v", ErrRenderFailed, index, err)
	}

	return scale(img, target), nil
}

// dpi picks the smallest resolution that covers target, within configured bounds.
func (s *PageSet) dpi(box, target Size) int {
	if box.IsZero() {
		return s.cfg.MinDPI
	}

	factor := math.Max(target.Width/box.Width, target.Height/box.Height)
	d := int(math.Ceil(72 * factor))
	return min(max(d, s.cfg.MinDPI), s.cfg.MaxDPI)
}
