package codec_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"testing"

	"github.com/Bluenz7/pdfredactor/internal/codec"
	"github.com/Bluenz7/pdfredactor/internal/codec/codectest"
)

func newCodec(t *testing.T) (codec.System, *codectest.Renderer) {
	t.Helper()
	r := codectest.NewRenderer(color.White)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return codec.New(r, codec.Config{Workers: 2}, logger), r
}

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

func encode(t *testing.T, c codec.System, n, w, h int) []byte {
	t.Helper()
	images := make([]image.Image, n)
	for i := range images {
		images[i] = solid(w, h, color.Gray{Y: uint8(40 * i)})
	}
	data, err := c.Encode(images, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return data
}

func TestEncode_Decode(t *testing.T) {
	c, _ := newCodec(t)
	data := encode(t, c, 3, 100, 150)

	set, err := c.Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if set.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", set.Count())
	}

	for i, box := range set.MediaBoxes() {
		if box.Width != 100 || box.Height != 150 {
			t.Errorf("page %d box = %+v, want 100x150", i, box)
		}
	}
}

func TestEncode_PageSize(t *testing.T) {
	c, _ := newCodec(t)

	images := []image.Image{solid(50, 50, color.Black), solid(80, 20, color.White)}
	data, err := c.Encode(images, &codec.DefaultPageSize)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	set, err := c.Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	for i, box := range set.MediaBoxes() {
		if box != codec.DefaultPageSize {
			t.Errorf("page %d box = %+v, want %+v", i, box, codec.DefaultPageSize)
		}
	}
}

func TestEncode_NoImages(t *testing.T) {
	c, _ := newCodec(t)

	if _, err := c.Encode(nil, nil); !errors.Is(err, codec.ErrNoImages) {
		t.Errorf("Encode(nil) error = %v, want ErrNoImages", err)
	}
}

func TestDecode_InvalidData(t *testing.T) {
	c, _ := newCodec(t)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte("not a pdf at all")},
		{"truncated header", []byte("%PDF-1.7\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Decode(tt.data); !errors.Is(err, codec.ErrInvalidData) {
				t.Errorf("Decode() error = %v, want ErrInvalidData", err)
			}
			if _, err := c.PageCount(tt.data); !errors.Is(err, codec.ErrInvalidData) {
				t.Errorf("PageCount() error = %v, want ErrInvalidData", err)
			}
		})
	}
}

func TestRemovePage(t *testing.T) {
	c, _ := newCodec(t)
	data := encode(t, c, 3, 60, 80)

	out, err := c.RemovePage(data, 1)
	if err != nil {
		t.Fatalf("RemovePage failed: %v", err)
	}

	count, err := c.PageCount(out)
	if err != nil {
		t.Fatalf("PageCount failed: %v", err)
	}
	if count != 2 {
		t.Errorf("page count = %d, want 2", count)
	}

	original, _ := c.PageCount(data)
	if original != 3 {
		t.Errorf("input mutated: page count = %d, want 3", original)
	}
}

func TestRemovePage_Errors(t *testing.T) {
	c, _ := newCodec(t)
	triple := encode(t, c, 3, 60, 80)

	tests := []struct {
		name    string
		data    []byte
		index   int
		wantErr error
	}{
		{"negative index", triple, -1, codec.ErrIndexOutOfRange},
		{"index past end", triple, 3, codec.ErrIndexOutOfRange},
		{"invalid data", []byte("junk"), 0, codec.ErrInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.RemovePage(tt.data, tt.index); !errors.Is(err, tt.wantErr) {
				t.Errorf("RemovePage() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRemovePage_OnlyPage(t *testing.T) {
	c, _ := newCodec(t)
	single := encode(t, c, 1, 60, 80)
	original := bytes.Clone(single)

	empty, err := c.RemovePage(single, 0)
	if err != nil {
		t.Fatalf("RemovePage failed: %v", err)
	}
	if !bytes.Equal(single, original) {
		t.Error("input mutated")
	}

	count, err := c.PageCount(empty)
	if err != nil {
		t.Fatalf("PageCount failed: %v", err)
	}
	if count != 0 {
		t.Errorf("page count = %d, want 0", count)
	}

	set, err := c.Decode(empty)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if set.Count() != 0 {
		t.Errorf("decoded page count = %d, want 0", set.Count())
	}

	thumb, err := c.ThumbnailPNG(empty)
	if err != nil {
		t.Fatalf("ThumbnailPNG failed: %v", err)
	}
	if thumb != nil {
		t.Errorf("thumbnail = %d bytes, want nil", len(thumb))
	}
}

func TestRemovePage_EmptyDocument(t *testing.T) {
	c, _ := newCodec(t)
	empty, err := c.RemovePage(encode(t, c, 1, 60, 80), 0)
	if err != nil {
		t.Fatalf("RemovePage failed: %v", err)
	}
	before := bytes.Clone(empty)

	for _, index := range []int{0, -1, 1} {
		if _, err := c.RemovePage(empty, index); !errors.Is(err, codec.ErrIndexOutOfRange) {
			t.Errorf("RemovePage(%d) error = %v, want ErrIndexOutOfRange", index, err)
		}
	}
	if !bytes.Equal(empty, before) {
		t.Error("empty document bytes changed")
	}
}

func TestExtractPages(t *testing.T) {
	c, _ := newCodec(t)
	data := encode(t, c, 4, 60, 80)

	tests := []struct {
		name    string
		indices []int
		want    int
		wantErr error
	}{
		{"subset", []int{0, 2}, 2, nil},
		{"unsorted with duplicates", []int{3, 1, 1}, 2, nil},
		{"out of range skipped", []int{1, 9, -2}, 1, nil},
		{"all pages", []int{0, 1, 2, 3}, 4, nil},
		{"nothing valid", []int{7, -1}, 0, codec.ErrEmptySelection},
		{"empty", nil, 0, codec.ErrEmptySelection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := c.ExtractPages(data, tt.indices)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ExtractPages() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractPages failed: %v", err)
			}

			count, err := c.PageCount(out)
			if err != nil {
				t.Fatalf("PageCount failed: %v", err)
			}
			if count != tt.want {
				t.Errorf("page count = %d, want %d", count, tt.want)
			}
		})
	}
}

func TestRotatePage(t *testing.T) {
	c, _ := newCodec(t)
	data := encode(t, c, 2, 60, 80)

	for _, deg := range []int{90, -90, 180, 360} {
		out, err := c.RotatePage(data, 0, deg)
		if err != nil {
			t.Fatalf("RotatePage(%d) failed: %v", deg, err)
		}
		if count, _ := c.PageCount(out); count != 2 {
			t.Errorf("RotatePage(%d) page count = %d, want 2", deg, count)
		}
	}

	if _, err := c.RotatePage(data, 0, 45); !errors.Is(err, codec.ErrInvalidRotation) {
		t.Errorf("RotatePage(45) error = %v, want ErrInvalidRotation", err)
	}
	if _, err := c.RotatePage(data, 5, 90); !errors.Is(err, codec.ErrIndexOutOfRange) {
		t.Errorf("RotatePage(index 5) error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestConcat_Order(t *testing.T) {
	c, _ := newCodec(t)
	a := encode(t, c, 2, 100, 150)
	b := encode(t, c, 1, 200, 100)

	out, err := c.Concat(a, b)
	if err != nil {
		t.Fatalf("Concat failed: %v", err)
	}

	set, err := c.Decode(out)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	want := []codec.Size{{Width: 100, Height: 150}, {Width: 100, Height: 150}, {Width: 200, Height: 100}}
	got := set.MediaBoxes()
	if len(got) != len(want) {
		t.Fatalf("page count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("page %d box = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestConcat_Errors(t *testing.T) {
	c, _ := newCodec(t)
	a := encode(t, c, 1, 60, 80)

	if _, err := c.Concat(); !errors.Is(err, codec.ErrEmptySelection) {
		t.Errorf("Concat() error = %v, want ErrEmptySelection", err)
	}
	if _, err := c.Concat(a, []byte("junk")); !errors.Is(err, codec.ErrInvalidData) {
		t.Errorf("Concat(valid, junk) error = %v, want ErrInvalidData", err)
	}
}

func TestThumbnail(t *testing.T) {
	c, _ := newCodec(t)
	data := encode(t, c, 2, 100, 160)

	img, err := c.Thumbnail(data)
	if err != nil {
		t.Fatalf("Thumbnail failed: %v", err)
	}

	b := img.Bounds()
	if b.Dx() != 25 || b.Dy() != 40 {
		t.Errorf("thumbnail size = %dx%d, want 25x40", b.Dx(), b.Dy())
	}

	png, err := c.ThumbnailPNG(data)
	if err != nil {
		t.Fatalf("ThumbnailPNG failed: %v", err)
	}
	if len(png) == 0 {
		t.Error("ThumbnailPNG returned no bytes")
	}
}

func TestRasterizeWidth(t *testing.T) {
	c, r := newCodec(t)
	data := encode(t, c, 3, 100, 200)

	set, err := c.Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	images, err := set.RasterizeWidth(context.Background(), 50)
	if err != nil {
		t.Fatalf("RasterizeWidth failed: %v", err)
	}

	if len(images) != 3 {
		t.Fatalf("len(images) = %d, want 3", len(images))
	}
	for i, img := range images {
		b := img.Bounds()
		if b.Dx() != 50 || b.Dy() != 100 {
			t.Errorf("page %d size = %dx%d, want 50x100", i, b.Dx(), b.Dy())
		}
	}

	if r.Pages() != 3 {
		t.Errorf("rasterized pages = %d, want 3", r.Pages())
	}
	if r.Opens() > 2 {
		t.Errorf("opens = %d, want at most 2 workers", r.Opens())
	}
}

func TestRasterizeWidth_Failure(t *testing.T) {
	c, r := newCodec(t)
	data := encode(t, c, 2, 100, 200)

	set, err := c.Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	r.SetFail(true)
	if _, err := set.RasterizeWidth(context.Background(), 50); !errors.Is(err, codec.ErrRenderFailed) {
		t.Errorf("RasterizeWidth() error = %v, want ErrRenderFailed", err)
	}
}

func TestRasterizeWidth_Canceled(t *testing.T) {
	c, _ := newCodec(t)
	data := encode(t, c, 2, 100, 200)

	set, err := c.Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := set.RasterizeWidth(ctx, 50); !errors.Is(err, context.Canceled) {
		t.Errorf("RasterizeWidth() error = %v, want context.Canceled", err)
	}
}
