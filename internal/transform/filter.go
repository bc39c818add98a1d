package transform

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/gift"
	"golang.org/x/image/draw"
)

type Filter string

const (
	FilterMono     Filter = "mono"
	FilterInstant  Filter = "instant"
	FilterCool     Filter = "cool"
	FilterWarm     Filter = "warm"
	FilterSepia    Filter = "sepia"
	FilterDramatic Filter = "dramatic"
	FilterNoir     Filter = "noir"
)

// Filters lists every supported kernel in display order.
var Filters = []Filter{
	FilterMono,
	FilterInstant,
	FilterCool,
	FilterWarm,
	FilterSepia,
	FilterDramatic,
	FilterNoir,
}

func (f Filter) Validate() error {
	if _, ok := kernels[f]; ok || f == FilterSepia {
		return nil
	}
	return fmt.Errorf("%w: unknown filter %q", ErrInvalidArgument, f)
}

// kernels are the color-grade chains applied at full strength.
var kernels = map[Filter][]gift.Filter{
	FilterMono: {
		gift.Grayscale(),
	},
	// faded blacks, lifted reds, muted blues
	FilterInstant: {
		gift.Contrast(-12),
		gift.ColorBalance(6, -2, -12),
		gift.Gamma(1.05),
	},
	FilterCool: {
		gift.Brightness(2),
		gift.Contrast(5),
		gift.Saturation(-10),
		gift.ColorBalance(-8, -2, 10),
	},
	FilterWarm: {
		gift.Brightness(2),
		gift.Contrast(5),
		gift.Saturation(10),
		gift.ColorBalance(10, 2, -12),
	},
	FilterDramatic: {
		gift.Saturation(15),
		gift.Sigmoid(0.5, 6),
	},
	FilterNoir: {
		gift.Grayscale(),
		gift.Sigmoid(0.5, 7),
	},
}

// ApplyFilter runs the named kernel over img. Every kernel except sepia is
// blended over the original with alpha = intensity; sepia scales its own
// strength by intensity instead. Intensity 0 returns the original pixels
// exactly and intensity 1 returns the raw kernel output. Alpha is
// preserved.
func ApplyFilter(img *image.NRGBA, f Filter, intensity float64) (*image.NRGBA, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(intensity) || intensity < 0 || intensity > 1 {
		return nil, fmt.Errorf("%w: intensity %v outside [0,1]", ErrInvalidArgument, intensity)
	}

	if intensity == 0 {
		return clone(img), nil
	}

	if f == FilterSepia {
		return render(img, gift.Sepia(float32(intensity*100))), nil
	}

	filtered := render(img, kernels[f]...)

	a := uint8(math.Round(intensity * 255))
	if a == 255 {
		return filtered, nil
	}

	dst := clone(img)
	draw.DrawMask(
		dst, dst.Bounds(),
		filtered, image.Point{},
		image.NewUniform(color.Alpha{A: a}), image.Point{},
		draw.Over,
	)
	return dst, nil
}

// render draws img through filters into a fresh zero-origin raster.
func render(img image.Image, filters ...gift.Filter) *image.NRGBA {
	g := gift.New(filters...)
	b := g.Bounds(img.Bounds())
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	g.Draw(dst, img)
	return dst
}
