package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Bluenz7/pdfredactor/internal/codec"
)

const (
	EnvRenderMinDPI     = "RENDER_MIN_DPI"
	EnvRenderMaxDPI     = "RENDER_MAX_DPI"
	EnvRenderWorkers    = "RENDER_WORKERS"
	EnvRenderTempDir    = "RENDER_TEMP_DIR"
	EnvRenderBackground = "RENDER_BACKGROUND"
)

// RenderConfig controls page rasterization. Zero values fall back to the
// codec defaults.
type RenderConfig struct {
	MinDPI     int    `toml:"min_dpi"`
	MaxDPI     int    `toml:"max_dpi"`
	Workers    int    `toml:"workers"`
	TempDir    string `toml:"temp_dir"`
	Background string `toml:"background"`
}

// Codec returns the codec settings.
func (c *RenderConfig) Codec() codec.Config {
	return codec.Config{
		MinDPI:  c.MinDPI,
		MaxDPI:  c.MaxDPI,
		Workers: c.Workers,
	}
}

// Magick returns the ImageMagick renderer settings.
func (c *RenderConfig) Magick() codec.MagickConfig {
	return codec.MagickConfig{
		TempDir:    c.TempDir,
		Background: c.Background,
	}
}

// Finalize loads environment overrides and validates the render configuration.
func (c *RenderConfig) Finalize() error {
	for env, dst := range map[string]*int{
		EnvRenderMinDPI:  &c.MinDPI,
		EnvRenderMaxDPI:  &c.MaxDPI,
		EnvRenderWorkers: &c.Workers,
	} {
		if v := os.Getenv(env); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", env, err)
			}
			*dst = n
		}
	}
	if v := os.Getenv(EnvRenderTempDir); v != "" {
		c.TempDir = v
	}
	if v := os.Getenv(EnvRenderBackground); v != "" {
		c.Background = v
	}

	if c.MinDPI < 0 || c.MaxDPI < 0 || c.Workers < 0 {
		return fmt.Errorf("min_dpi, max_dpi and workers must not be negative")
	}
	if c.MinDPI > 0 && c.MaxDPI > 0 && c.MinDPI > c.MaxDPI {
		return fmt.Errorf("min_dpi cannot exceed max_dpi")
	}
	return nil
}

// Merge applies non-zero overlay values.
func (c *RenderConfig) Merge(overlay *RenderConfig) {
	if overlay.MinDPI != 0 {
		c.MinDPI = overlay.MinDPI
	}
	if overlay.MaxDPI != 0 {
		c.MaxDPI = overlay.MaxDPI
	}
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	if overlay.TempDir != "" {
		c.TempDir = overlay.TempDir
	}
	if overlay.Background != "" {
		c.Background = overlay.Background
	}
}
