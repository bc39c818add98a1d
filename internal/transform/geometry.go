package transform

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/gift"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Axis names the centerline a Flip mirrors across.
type Axis string

const (
	// AxisHorizontal mirrors across the horizontal centerline (top and bottom swap).
	AxisHorizontal Axis = "horizontal"
	// AxisVertical mirrors across the vertical centerline (left and right swap).
	AxisVertical Axis = "vertical"
)

func (a Axis) Validate() error {
	switch a {
	case AxisHorizontal, AxisVertical:
		return nil
	default:
		return fmt.Errorf("%w: unknown flip axis %q", ErrInvalidArgument, a)
	}
}

// Crop copies exactly the pixels within r.
func Crop(img *image.NRGBA, r image.Rectangle) (*image.NRGBA, error) {
	if r.Empty() {
		return nil, fmt.Errorf("%w: crop rect %v has zero area", ErrInvalidArgument, r)
	}
	if !r.In(img.Bounds()) {
		return nil, fmt.Errorf("%w: crop rect %v outside image bounds %v", ErrInvalidArgument, r, img.Bounds())
	}

	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst, nil
}

// Rotate turns img clockwise by degrees about its center onto a canvas
// sized to the rotated bounding box, so no source pixel is clipped.
// Multiples of 90 are handled as exact pixel permutations; other angles
// are resampled bilinearly with transparent corners.
func Rotate(img *image.NRGBA, degrees float64) (*image.NRGBA, error) {
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return nil, fmt.Errorf("%w: rotation angle must be finite", ErrInvalidArgument)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidArgument)
	}

	norm := math.Mod(degrees, 360)
	if norm < 0 {
		norm += 360
	}

	if q := math.Round(norm / 90); math.Abs(norm-q*90) < 1e-9 {
		return rotateQuarter(img, int(q)%4), nil
	}

	return rotateAffine(img, norm), nil
}

// RotatedSize is the integral bounding box of a w x h rectangle rotated
// by degrees.
func RotatedSize(w, h int, degrees float64) image.Point {
	rad := degrees * math.Pi / 180
	c, s := math.Abs(math.Cos(rad)), math.Abs(math.Sin(rad))
	fw, fh := float64(w), float64(h)

	return image.Pt(
		int(math.Ceil(fw*c+fh*s-1e-9)),
		int(math.Ceil(fw*s+fh*c-1e-9)),
	)
}

func rotateQuarter(img *image.NRGBA, quarters int) *image.NRGBA {
	src := toNRGBA(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()

	var dst *image.NRGBA
	var at func(dx, dy int) (int, int)

	switch quarters {
	case 0:
		return clone(src)
	case 1:
		dst = image.NewNRGBA(image.Rect(0, 0, h, w))
		at = func(dx, dy int) (int, int) { return dy, h - 1 - dx }
	case 2:
		dst = image.NewNRGBA(image.Rect(0, 0, w, h))
		at = func(dx, dy int) (int, int) { return w - 1 - dx, h - 1 - dy }
	default:
		dst = image.NewNRGBA(image.Rect(0, 0, h, w))
		at = func(dx, dy int) (int, int) { return w - 1 - dy, dx }
	}

	db := dst.Bounds()
	for dy := 0; dy < db.Dy(); dy++ {
		for dx := 0; dx < db.Dx(); dx++ {
			sx, sy := at(dx, dy)
			copy(dst.Pix[dst.PixOffset(dx, dy):][:4], src.Pix[src.PixOffset(sx, sy):][:4])
		}
	}
	return dst
}

// rotateAffine maps source to destination with the canvas origin moved to
// the new center. The raster y axis points down, so the standard rotation
// matrix already turns clockwise on screen.
func rotateAffine(img *image.NRGBA, degrees float64) *image.NRGBA {
	b := img.Bounds()
	size := RotatedSize(b.Dx(), b.Dy(), degrees)
	dst := image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))

	rad := degrees * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)

	scx := float64(b.Min.X) + float64(b.Dx())/2
	scy := float64(b.Min.Y) + float64(b.Dy())/2
	dcx := float64(size.X) / 2
	dcy := float64(size.Y) / 2

	s2d := f64.Aff3{
		cos, -sin, dcx - (cos*scx - sin*scy),
		sin, cos, dcy - (sin*scx + cos*scy),
	}

	draw.BiLinear.Transform(dst, s2d, img, b, draw.Src, nil)
	return dst
}

// Flip mirrors img across the given centerline; the canvas is unchanged.
func Flip(img *image.NRGBA, axis Axis) (*image.NRGBA, error) {
	if err := axis.Validate(); err != nil {
		return nil, err
	}

	// gift names flips by the direction pixels travel, not the mirror line
	if axis == AxisHorizontal {
		return render(img, gift.FlipVertical()), nil
	}
	return render(img, gift.FlipHorizontal()), nil
}

// Rect is a placement in continuous page units.
type Rect struct {
	X, Y, W, H float64
}

// FitRect places a content rectangle inside a canvas preserving aspect
// ratio and centering it. A canvas relatively wider than the content is
// fit to height and centered horizontally; otherwise it is fit to width
// and centered vertically.
func FitRect(contentW, contentH, canvasW, canvasH float64) (Rect, error) {
	for _, v := range []float64{contentW, contentH, canvasW, canvasH} {
		if !(v > 0) || math.IsInf(v, 0) {
			return Rect{}, fmt.Errorf("%w: fit dimensions must be positive and finite", ErrInvalidArgument)
		}
	}

	contentAspect := contentW / contentH
	canvasAspect := canvasW / canvasH

	if canvasAspect > contentAspect {
		w := canvasH * contentAspect
		return Rect{X: (canvasW - w) / 2, Y: 0, W: w, H: canvasH}, nil
	}

	h := canvasW / contentAspect
	return Rect{X: 0, Y: (canvasH - h) / 2, W: canvasW, H: h}, nil
}
