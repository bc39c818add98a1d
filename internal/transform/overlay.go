package transform

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Overlay produces a transparent layer for a canvas of the given size.
// Implementations describe their content in size-independent units so the
// same overlay can be rasterized for a preview and for the full image.
type Overlay interface {
	Rasterize(size image.Point) (*image.NRGBA, error)
}

// ApplyOverlay rasterizes o at the size of base and composites it over.
func ApplyOverlay(base *image.NRGBA, o Overlay) (*image.NRGBA, error) {
	layer, err := o.Rasterize(base.Bounds().Size())
	if err != nil {
		return nil, err
	}
	return CompositeOver(base, layer)
}

// Point is a position in unit canvas coordinates: (0,0) is the top-left
// corner and (1,1) the bottom-right.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is a freehand polyline. Width is a fraction of the canvas'
// shorter side.
type Stroke struct {
	Points []Point     `json:"points"`
	Width  float64     `json:"width"`
	Color  color.NRGBA `json:"color"`
}

// StrokeOverlay rasterizes annotation, signature, or redaction strokes.
type StrokeOverlay struct {
	Strokes []Stroke `json:"strokes"`
}

func (s StrokeOverlay) Validate() error {
	if len(s.Strokes) == 0 {
		return fmt.Errorf("%w: overlay has no strokes", ErrInvalidArgument)
	}
	for i, st := range s.Strokes {
		if len(st.Points) == 0 {
			return fmt.Errorf("%w: stroke %d has no points", ErrInvalidArgument, i)
		}
		if !(st.Width > 0) || st.Width > 1 {
			return fmt.Errorf("%w: stroke %d width must be in (0,1]", ErrInvalidArgument, i)
		}
		for _, p := range st.Points {
			if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
				return fmt.Errorf("%w: stroke %d has non-finite point", ErrInvalidArgument, i)
			}
		}
	}
	return nil
}

func (s StrokeOverlay) Rasterize(size image.Point) (*image.NRGBA, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("%w: canvas size %v must be positive", ErrInvalidArgument, size)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	minDim := float64(min(size.X, size.Y))

	for _, st := range s.Strokes {
		radius := math.Max(0.5, st.Width*minDim/2)

		z := vector.NewRasterizer(size.X, size.Y)
		z.DrawOp = draw.Over

		var prev *Point
		for _, p := range st.Points {
			x, y := p.X*float64(size.X), p.Y*float64(size.Y)
			addDisc(z, x, y, radius)
			if prev != nil {
				px, py := prev.X*float64(size.X), prev.Y*float64(size.Y)
				addSegment(z, px, py, x, y, radius)
			}
			prev = &p
		}

		z.Draw(canvas, canvas.Bounds(), image.NewUniform(st.Color), image.Point{})
	}

	return toNRGBA(canvas), nil
}

// discSides approximates round caps and joins.
const discSides = 24

func addDisc(z *vector.Rasterizer, cx, cy, r float64) {
	for i := range discSides {
		a := 2 * math.Pi * float64(i) / discSides
		x, y := float32(cx+r*math.Cos(a)), float32(cy+r*math.Sin(a))
		if i == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()
}

func addSegment(z *vector.Rasterizer, x0, y0, x1, y1, r float64) {
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}

	// Same winding as addDisc so overlapping coverage saturates rather
	// than cancels.
	nx, ny := -dy/length*r, dx/length*r
	z.MoveTo(float32(x0-nx), float32(y0-ny))
	z.LineTo(float32(x1-nx), float32(y1-ny))
	z.LineTo(float32(x1+nx), float32(y1+ny))
	z.LineTo(float32(x0+nx), float32(y0+ny))
	z.ClosePath()
}
