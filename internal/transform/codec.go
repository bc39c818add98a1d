package transform

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode reads any registered raster format into an NRGBA image whose
// bounds start at the origin. The detected format name is returned.
func Decode(data []byte) (*image.NRGBA, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty image data", ErrImageCodec)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: decode: %w", ErrImageCodec, err)
	}

	return toNRGBA(src), format, nil
}

// EncodeJPEG flattens transparency onto white before encoding.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("%w: jpeg quality %d out of range", ErrInvalidArgument, quality)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flatten(img), &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("%w: encode jpeg: %w", ErrImageCodec, err)
	}
	return buf.Bytes(), nil
}

// EncodePNG is lossless and deterministic for identical pixel data.
func EncodePNG(img image.Image) ([]byte, error) {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}

	var buf bytes.Buffer
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: encode png: %w", ErrImageCodec, err)
	}
	return buf.Bytes(), nil
}

// Thumbnail scales img so its longest side is at most maxDim.
// Images already within bounds are copied unscaled.
func Thumbnail(img *image.NRGBA, maxDim int) *image.NRGBA {
	return scaleToFit(img, maxDim, draw.CatmullRom)
}

// Preview is a faster, lower quality variant of Thumbnail used for
// interactive edits.
func Preview(img *image.NRGBA, maxDim int) *image.NRGBA {
	return scaleToFit(img, maxDim, draw.ApproxBiLinear)
}

func scaleToFit(img *image.NRGBA, maxDim int, interp draw.Interpolator) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return clone(img)
	}

	var tw, th int
	if w >= h {
		tw = maxDim
		th = max(1, h*maxDim/w)
	} else {
		th = maxDim
		tw = max(1, w*maxDim/h)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, tw, th))
	interp.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func toNRGBA(src image.Image) *image.NRGBA {
	// sub-images share their parent's stride; only tight rasters pass through
	if n, ok := src.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) && n.Stride == 4*n.Bounds().Dx() {
		return n
	}

	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

func clone(img *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	return dst
}

func flatten(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}

	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, b, img, b.Min, draw.Over)
	return dst
}
