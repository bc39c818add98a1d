package transform

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	// watermarkMarginRings extends the anchor grid past the canvas diagonal
	// so rotated rows still reach the corners.
	watermarkMarginRings = 2

	// minWatermarkSize is the smallest RelativeSize accepted.
	minWatermarkSize = 0.01

	// maxWatermarkAnchors bounds the anchor grid visited for one layer.
	maxWatermarkAnchors = 1 << 20
)

var defaultWatermarkColor = color.NRGBA{R: 128, G: 128, B: 128, A: 255}

// Watermark describes a tiled text layer. RelativeSize and Spacing are
// fractions of the canvas' shorter side so a preview and a full
// resolution render produce the same layout.
type Watermark struct {
	Text         string       `json:"text"`
	Opacity      float64      `json:"opacity"`
	RelativeSize float64      `json:"relative_size"`
	Angle        float64      `json:"angle"`
	Spacing      float64      `json:"spacing"`
	Color        *color.NRGBA `json:"-"`
}

func (w Watermark) Validate() error {
	switch {
	case strings.TrimSpace(w.Text) == "":
		return fmt.Errorf("%w: watermark text required", ErrInvalidArgument)
	case math.IsNaN(w.Opacity) || w.Opacity < 0 || w.Opacity > 1:
		return fmt.Errorf("%w: watermark opacity must be in [0,1]", ErrInvalidArgument)
	case !(w.RelativeSize >= minWatermarkSize) || w.RelativeSize > 1:
		return fmt.Errorf("%w: watermark relative size must be in [%v,1]", ErrInvalidArgument, minWatermarkSize)
	case !(w.Spacing > 0) || math.IsInf(w.Spacing, 0):
		return fmt.Errorf("%w: watermark spacing must be positive", ErrInvalidArgument)
	case w.Spacing < w.RelativeSize:
		return fmt.Errorf("%w: watermark spacing must be at least the relative size", ErrInvalidArgument)
	case math.IsNaN(w.Angle) || math.IsInf(w.Angle, 0):
		return fmt.Errorf("%w: watermark angle must be finite", ErrInvalidArgument)
	}
	return nil
}

// Layer is a transparent raster ready for CompositeOver.
type Layer struct {
	Image *image.NRGBA
	// Tiles is the number of anchors that survived culling and were drawn.
	Tiles int
}

var parseGoRegular = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// GenerateWatermarkLayer tiles w.Text across a transparent canvas of the
// given size. Anchors are laid out on a square grid centered on the
// canvas, rotated by w.Angle about the center, and culled when the
// rotated text cannot touch the canvas. Opacity 0 still performs the full
// tiling and yields a fully transparent layer.
func GenerateWatermarkLayer(w Watermark, size image.Point) (*Layer, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("%w: canvas size %v must be positive", ErrInvalidArgument, size)
	}

	minDim := float64(min(size.X, size.Y))
	fontSize := math.Max(1, w.RelativeSize*minDim)
	spacing := math.Max(fontSize, w.Spacing*minDim)

	stamp, err := renderText(w, fontSize)
	if err != nil {
		return nil, err
	}

	tile, err := Rotate(stamp, w.Angle)
	if err != nil {
		return nil, err
	}

	layer := &Layer{Image: image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))}

	cx, cy := float64(size.X)/2, float64(size.Y)/2
	rad := w.Angle * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	reach := math.Hypot(float64(stamp.Bounds().Dx()), float64(stamp.Bounds().Dy())) / 2

	diagonal := math.Hypot(float64(size.X), float64(size.Y))
	rings := int(math.Ceil(diagonal/spacing)) + watermarkMarginRings
	if side := 2*rings + 1; side > maxWatermarkAnchors/side {
		return nil, fmt.Errorf(
			"%w: watermark spacing too dense for canvas %v",
			ErrInvalidArgument, size,
		)
	}

	tb := tile.Bounds()
	tw, th := tb.Dx(), tb.Dy()

	for j := -rings; j <= rings; j++ {
		for i := -rings; i <= rings; i++ {
			gx, gy := float64(i)*spacing, float64(j)*spacing
			ax := cx + gx*cos - gy*sin
			ay := cy + gx*sin + gy*cos

			if ax+reach < 0 || ax-reach > float64(size.X) || ay+reach < 0 || ay-reach > float64(size.Y) {
				continue
			}

			at := image.Pt(int(math.Round(ax-float64(tw)/2)), int(math.Round(ay-float64(th)/2)))
			draw.Draw(layer.Image, image.Rectangle{Min: at, Max: at.Add(tb.Size())}, tile, tb.Min, draw.Over)
			layer.Tiles++
		}
	}

	return layer, nil
}

func renderText(w Watermark, fontSize float64) (*image.NRGBA, error) {
	f, err := parseGoRegular()
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	defer face.Close()

	bounds, _ := font.BoundString(face, w.Text)
	width := max(1, (bounds.Max.X - bounds.Min.X).Ceil())
	height := max(1, (bounds.Max.Y - bounds.Min.Y).Ceil())

	c := defaultWatermarkColor
	if w.Color != nil {
		c = *w.Color
	}
	c.A = uint8(math.Round(float64(c.A) * w.Opacity))

	stamp := image.NewNRGBA(image.Rect(0, 0, width, height))
	d := font.Drawer{
		Dst:  stamp,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: -bounds.Min.X, Y: -bounds.Min.Y},
	}
	d.DrawString(w.Text)

	return stamp, nil
}
