package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvPagesJPEGQuality   = "PAGES_JPEG_QUALITY"
	EnvPagesThumbnailSize = "PAGES_THUMBNAIL_SIZE"
	EnvPagesPreviewSize   = "PAGES_PREVIEW_SIZE"
	EnvPagesPDFDPI        = "PAGES_PDF_DPI"
)

// PagesConfig controls how page rasters are encoded and derived.
type PagesConfig struct {
	// JPEGQuality applies to every stored page and thumbnail. Default: 80
	JPEGQuality int `toml:"jpeg_quality"`
	// ThumbnailSize is the longest thumbnail side in pixels. Default: 320
	ThumbnailSize int `toml:"thumbnail_size"`
	// PreviewSize bounds edit previews. Default: 1024
	PreviewSize int `toml:"preview_size"`
	// PDFDPI is the raster density for PDF import and export pages. Default: 150
	PDFDPI int `toml:"pdf_dpi"`
}

func (c *PagesConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *PagesConfig) Merge(overlay *PagesConfig) {
	if overlay.JPEGQuality > 0 {
		c.JPEGQuality = overlay.JPEGQuality
	}
	if overlay.ThumbnailSize > 0 {
		c.ThumbnailSize = overlay.ThumbnailSize
	}
	if overlay.PreviewSize > 0 {
		c.PreviewSize = overlay.PreviewSize
	}
	if overlay.PDFDPI > 0 {
		c.PDFDPI = overlay.PDFDPI
	}
}

func (c *PagesConfig) loadDefaults() {
	if c.JPEGQuality <= 0 {
		c.JPEGQuality = 80
	}
	if c.ThumbnailSize <= 0 {
		c.ThumbnailSize = 320
	}
	if c.PreviewSize <= 0 {
		c.PreviewSize = 1024
	}
	if c.PDFDPI <= 0 {
		c.PDFDPI = 150
	}
}

func (c *PagesConfig) loadEnv() {
	for name, dst := range map[string]*int{
		EnvPagesJPEGQuality:   &c.JPEGQuality,
		EnvPagesThumbnailSize: &c.ThumbnailSize,
		EnvPagesPreviewSize:   &c.PreviewSize,
		EnvPagesPDFDPI:        &c.PDFDPI,
	} {
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
}

func (c *PagesConfig) validate() error {
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be between 1 and 100")
	}
	if c.ThumbnailSize < 16 {
		return fmt.Errorf("thumbnail_size must be at least 16")
	}
	if c.PreviewSize < c.ThumbnailSize {
		return fmt.Errorf("preview_size must not be smaller than thumbnail_size")
	}
	if c.PDFDPI < 36 || c.PDFDPI > 600 {
		return fmt.Errorf("pdf_dpi must be between 36 and 600")
	}
	return nil
}
