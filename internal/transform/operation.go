package transform

import (
	"fmt"
	"image"
)

type OperationKind string

const (
	OpCrop      OperationKind = "crop"
	OpRotate    OperationKind = "rotate"
	OpFlip      OperationKind = "flip"
	OpFilter    OperationKind = "filter"
	OpWatermark OperationKind = "watermark"
	OpOverlay   OperationKind = "overlay"
)

// CropRect is expressed in unit coordinates so it applies equally to a
// preview and to the full resolution raster.
type CropRect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Pixels resolves the unit rect against a canvas size.
func (c CropRect) Pixels(size image.Point) (image.Rectangle, error) {
	if !(c.W > 0) || !(c.H > 0) || c.X < 0 || c.Y < 0 || c.X+c.W > 1+1e-9 || c.Y+c.H > 1+1e-9 {
		return image.Rectangle{}, fmt.Errorf("%w: crop rect %+v outside unit bounds", ErrInvalidArgument, c)
	}

	r := image.Rect(
		int(c.X*float64(size.X)+0.5),
		int(c.Y*float64(size.Y)+0.5),
		int((c.X+c.W)*float64(size.X)+0.5),
		int((c.Y+c.H)*float64(size.Y)+0.5),
	).Intersect(image.Rect(0, 0, size.X, size.Y))

	if r.Empty() {
		return image.Rectangle{}, fmt.Errorf("%w: crop rect %+v has zero area at %v", ErrInvalidArgument, c, size)
	}
	return r, nil
}

// Operation is one edit step applied to a page raster. Only the fields
// relevant to Kind are read.
type Operation struct {
	Kind      OperationKind  `json:"kind"`
	Crop      *CropRect      `json:"crop,omitempty"`
	Degrees   float64        `json:"degrees,omitempty"`
	Axis      Axis           `json:"axis,omitempty"`
	Filter    Filter         `json:"filter,omitempty"`
	Intensity *float64       `json:"intensity,omitempty"`
	Watermark *Watermark     `json:"watermark,omitempty"`
	Overlay   *StrokeOverlay `json:"overlay,omitempty"`
}

func (o Operation) Validate() error {
	switch o.Kind {
	case OpCrop:
		if o.Crop == nil {
			return fmt.Errorf("%w: crop requires a rect", ErrInvalidArgument)
		}
	case OpRotate:
	case OpFlip:
		return o.Axis.Validate()
	case OpFilter:
		return o.Filter.Validate()
	case OpWatermark:
		if o.Watermark == nil {
			return fmt.Errorf("%w: watermark parameters required", ErrInvalidArgument)
		}
		return o.Watermark.Validate()
	case OpOverlay:
		if o.Overlay == nil {
			return fmt.Errorf("%w: overlay strokes required", ErrInvalidArgument)
		}
		return o.Overlay.Validate()
	default:
		return fmt.Errorf("%w: unknown operation %q", ErrInvalidArgument, o.Kind)
	}
	return nil
}

// Apply runs the operation against img and returns a new raster.
func (o Operation) Apply(img *image.NRGBA) (*image.NRGBA, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	switch o.Kind {
	case OpCrop:
		r, err := o.Crop.Pixels(img.Bounds().Size())
		if err != nil {
			return nil, err
		}
		return Crop(img, r.Add(img.Bounds().Min))
	case OpRotate:
		return Rotate(img, o.Degrees)
	case OpFlip:
		return Flip(img, o.Axis)
	case OpFilter:
		intensity := 1.0
		if o.Intensity != nil {
			intensity = *o.Intensity
		}
		return ApplyFilter(img, o.Filter, intensity)
	case OpWatermark:
		layer, err := GenerateWatermarkLayer(*o.Watermark, img.Bounds().Size())
		if err != nil {
			return nil, err
		}
		return CompositeOver(img, layer.Image)
	default:
		return ApplyOverlay(img, *o.Overlay)
	}
}

// ApplyAll folds ops over img in order.
func ApplyAll(img *image.NRGBA, ops []Operation) (*image.NRGBA, error) {
	out := img
	for i, op := range ops {
		next, err := op.Apply(out)
		if err != nil {
			return nil, fmt.Errorf("operation %d (%s): %w", i, op.Kind, err)
		}
		out = next
	}
	return out, nil
}
