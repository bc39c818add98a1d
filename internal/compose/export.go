package compose

import (
	"context"
	"fmt"
	"image"
	"strings"
	"unicode"

	"github.com/JaimeStill/docpages/internal/transform"
	"github.com/google/uuid"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

func (f Format) Validate() error {
	switch f {
	case FormatPDF, FormatJPEG, FormatPNG:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatPNG:
		return "image/png"
	default:
		return "image/jpeg"
	}
}

func (f Format) Ext() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}

type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Export is the output of one document export. PDF exports hold a single
// file; image exports hold one file per exported page.
type Export struct {
	Format  Format
	Name    string
	Files   []File
	Pages   int
	Skipped int
}

// Export renders every decodable page of the document, in page order, to
// the target format.
func (c *composer) Export(ctx context.Context, owner, documentID uuid.UUID, format Format) (*Export, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}

	doc, data, err := c.docs.LoadPages(ctx, owner, documentID)
	if err != nil {
		return nil, err
	}

	imgs, _ := c.decodeAll(data)
	if len(imgs) == 0 {
		return nil, ErrNoExportableContent
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base := SanitizeFilename(doc.Name)
	out := &Export{
		Format:  format,
		Name:    base,
		Pages:   len(imgs),
		Skipped: len(data) - len(imgs),
	}

	switch format {
	case FormatPDF:
		pdf, err := renderPDF(imgs, c.pages.PDFDPI, c.pages.JPEGQuality)
		if err != nil {
			return nil, err
		}
		out.Files = []File{{
			Name:        base + ".pdf",
			ContentType: format.ContentType(),
			Data:        pdf,
		}}
	default:
		files, err := c.renderImages(imgs, base, format)
		if err != nil {
			return nil, err
		}
		out.Files = files
	}

	c.logger.Info("document exported",
		"id", documentID,
		"format", format,
		"pages", out.Pages,
		"skipped", out.Skipped,
	)
	return out, nil
}

func (c *composer) renderImages(imgs []*image.NRGBA, base string, format Format) ([]File, error) {
	files := make([]File, len(imgs))
	for i, img := range imgs {
		var (
			data []byte
			err  error
		)
		if format == FormatPNG {
			data, err = transform.EncodePNG(img)
		} else {
			data, err = transform.EncodeJPEG(img, c.pages.JPEGQuality)
		}
		if err != nil {
			return nil, err
		}

		name := base
		if len(imgs) > 1 {
			name = fmt.Sprintf("%s_%d", base, i+1)
		}
		files[i] = File{
			Name:        name + "." + format.Ext(),
			ContentType: format.ContentType(),
			Data:        data,
		}
	}
	return files, nil
}

// SanitizeFilename strips path separators, characters reserved on common
// filesystems, and control characters. An empty result becomes "document".
func SanitizeFilename(name string) string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(`/\:*?"<>|`, r) {
			return -1
		}
		return r
	}, name)

	clean = strings.Trim(strings.TrimSpace(clean), ".")
	if clean == "" {
		return "document"
	}
	return clean
}
