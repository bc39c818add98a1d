package transform

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// CompositeOver returns base with overlay alpha-composited on top.
// Both images must have the same dimensions. A fully transparent overlay
// leaves base unchanged.
func CompositeOver(base, overlay *image.NRGBA) (*image.NRGBA, error) {
	if base.Bounds().Size() != overlay.Bounds().Size() {
		return nil, fmt.Errorf(
			"%w: overlay size %v does not match base %v",
			ErrInvalidArgument, overlay.Bounds().Size(), base.Bounds().Size(),
		)
	}

	dst := clone(base)
	draw.Draw(dst, dst.Bounds(), overlay, overlay.Bounds().Min, draw.Over)
	return dst, nil
}
