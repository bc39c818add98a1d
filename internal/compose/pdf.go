package compose

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/JaimeStill/docpages/internal/transform"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/image/draw"
)

// US Letter in PDF points.
const (
	pageWidth  = 612.0
	pageHeight = 792.0
)

// importSpec fills the whole Letter page with each image; placement inside
// the page is already baked into the canvas.
const importSpec = "f:Letter, pos:c, sc:1.0"

// renderPDF lays each image onto a Letter canvas rasterized at dpi and
// writes one PDF page per canvas.
func renderPDF(imgs []*image.NRGBA, dpi, quality int) ([]byte, error) {
	readers := make([]io.Reader, len(imgs))
	for i, img := range imgs {
		canvas, err := letterCanvas(img, dpi)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}

		data, err := transform.EncodeJPEG(canvas, quality)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		readers[i] = bytes.NewReader(data)
	}

	imp, err := api.Import(importSpec, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("pdf import config: %w", err)
	}

	var buf bytes.Buffer
	if err := api.ImportImages(nil, &buf, readers, imp, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// letterCanvas draws img onto a white Letter-proportioned canvas, fit
// without cropping or distortion and centered.
func letterCanvas(img *image.NRGBA, dpi int) (*image.NRGBA, error) {
	cw := int(math.Round(pageWidth / 72 * float64(dpi)))
	ch := int(math.Round(pageHeight / 72 * float64(dpi)))

	b := img.Bounds()
	fit, err := transform.FitRect(float64(b.Dx()), float64(b.Dy()), float64(cw), float64(ch))
	if err != nil {
		return nil, err
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, cw, ch))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	dst := image.Rect(
		int(math.Round(fit.X)),
		int(math.Round(fit.Y)),
		int(math.Round(fit.X+fit.W)),
		int(math.Round(fit.Y+fit.H)),
	)
	draw.CatmullRom.Scale(canvas, dst, img, b, draw.Over, nil)
	return canvas, nil
}
