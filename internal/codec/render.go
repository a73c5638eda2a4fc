package codec

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"

	"github.com/JaimeStill/document-context/pkg/config"
	"github.com/JaimeStill/document-context/pkg/document"
	dcimage "github.com/JaimeStill/document-context/pkg/image"
)

const contentTypePDF = "application/pdf"

// Renderer opens encoded documents for page rasterization.
type Renderer interface {
	Open(data []byte) (Rasterizer, error)
}

// Rasterizer renders pages of one open document.
// A Rasterizer is not safe for concurrent use.
type Rasterizer interface {
	// Rasterize renders the page at index (zero-based) at dpi.
	Rasterize(index, dpi int) (image.Image, error)
	io.Closer
}

// MagickConfig configures the ImageMagick-backed renderer.
type MagickConfig struct {
	// TempDir receives the working copy of each opened document.
	// Empty uses the operating system default.
	TempDir    string
	Background string
}

type magick struct {
	cfg    MagickConfig
	logger *slog.Logger
}

// NewMagickRenderer creates a Renderer that rasterizes pages through ImageMagick.
func NewMagickRenderer(cfg MagickConfig, logger *slog.Logger) Renderer {
	if cfg.Background == "" {
		cfg.Background = "white"
	}
	return &magick{
		cfg:    cfg,
		logger: logger.With("system", "renderer"),
	}
}

func (m *magick) Open(data []byte) (Rasterizer, error) {
	tmp, err := os.CreateTemp(m.cfg.TempDir, "pdfredactor-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(path)
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	doc, err := document.Open(path, contentTypePDF)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("open document: %w", err)
	}

	return &magickDocument{
		path:       path,
		doc:        doc,
		background: m.cfg.Background,
		renderers:  make(map[int]dcimage.Renderer),
		logger:     m.logger,
	}, nil
}

type magickDocument struct {
	path       string
	doc        document.Document
	background string
	renderers  map[int]dcimage.Renderer
	logger     *slog.Logger
}

func (d *magickDocument) Rasterize(index, dpi int) (image.Image, error) {
	renderer, err := d.renderer(dpi)
	if err != nil {
		return nil, err
	}

	page, err := d.doc.ExtractPage(index + 1)
	if err != nil {
		return nil, fmt.Errorf("extract page %d: %w", index, err)
	}

	data, err := page.ToImage(renderer, nil)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", index, err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode page %d: %w", index, err)
	}
	return img, nil
}

func (d *magickDocument) renderer(dpi int) (dcimage.Renderer, error) {
	if r, ok := d.renderers[dpi]; ok {
		return r, nil
	}

	r, err := dcimage.NewImageMagickRenderer(config.ImageConfig{
		Format:  "png",
		DPI:     dpi,
		Options: map[string]any{"background": d.background},
	})
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	d.renderers[dpi] = r
	return r, nil
}

func (d *magickDocument) Close() error {
	err := d.doc.Close()
	if rmErr := os.Remove(d.path); rmErr != nil && !os.IsNotExist(rmErr) {
		d.logger.Warn("failed to remove temp file", "path", d.path, "error", rmErr)
	}
	return err
}
