package transform_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/JaimeStill/docpages/internal/transform"
)

// gradient returns an image where every pixel is distinct.
func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 17), G: uint8(y * 29), B: uint8((x + y) * 7), A: 255})
		}
	}
	return img
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// ramp returns a smooth linear gradient that bilinear resampling
// reproduces closely.
func ramp(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 3), G: uint8(y * 3), B: 128, A: 255})
		}
	}
	return img
}

func near(a, b color.NRGBA, tol int) bool {
	d := func(x, y uint8) int {
		if x > y {
			return int(x - y)
		}
		return int(y - x)
	}
	return d(a.R, b.R) <= tol && d(a.G, b.G) <= tol && d(a.B, b.B) <= tol && d(a.A, b.A) <= tol
}

func samePixels(a, b *image.NRGBA) bool {
	return a.Bounds().Size() == b.Bounds().Size() && bytes.Equal(a.Pix, b.Pix)
}

func TestCrop(t *testing.T) {
	img := gradient(8, 6)

	out, err := transform.Crop(img, image.Rect(2, 1, 5, 4))
	if err != nil {
		t.Fatalf("Crop() error = %v", err)
	}

	if out.Bounds() != image.Rect(0, 0, 3, 3) {
		t.Fatalf("Crop() bounds = %v", out.Bounds())
	}
	if out.NRGBAAt(0, 0) != img.NRGBAAt(2, 1) || out.NRGBAAt(2, 2) != img.NRGBAAt(4, 3) {
		t.Error("Crop() did not copy the exact source pixels")
	}
}

func TestCrop_Invalid(t *testing.T) {
	img := gradient(8, 6)

	tests := []struct {
		name string
		rect image.Rectangle
	}{
		{"zero area", image.Rect(2, 2, 2, 5)},
		{"outside", image.Rect(4, 4, 10, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := transform.Crop(img, tt.rect); !errors.Is(err, transform.ErrInvalidArgument) {
				t.Errorf("Crop() error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestRotate_QuarterTurns(t *testing.T) {
	img := gradient(5, 3)

	cw, err := transform.Rotate(img, 90)
	if err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}
	if cw.Bounds().Size() != image.Pt(3, 5) {
		t.Fatalf("Rotate(90) size = %v", cw.Bounds().Size())
	}
	// clockwise: the bottom-left source pixel becomes the top-left pixel
	if cw.NRGBAAt(0, 0) != img.NRGBAAt(0, 2) {
		t.Errorf("Rotate(90) top-left = %v, want %v", cw.NRGBAAt(0, 0), img.NRGBAAt(0, 2))
	}

	half, _ := transform.Rotate(img, 180)
	if half.NRGBAAt(0, 0) != img.NRGBAAt(4, 2) {
		t.Error("Rotate(180) did not swap opposite corners")
	}
}

func TestRotate_RoundTrip(t *testing.T) {
	img := gradient(7, 4)

	for _, d := range []float64{0, 90, -90, 180, 270, -270, 450} {
		once, err := transform.Rotate(img, d)
		if err != nil {
			t.Fatalf("Rotate(%v) error = %v", d, err)
		}
		back, err := transform.Rotate(once, -d)
		if err != nil {
			t.Fatalf("Rotate(%v) error = %v", -d, err)
		}
		if !samePixels(img, back) {
			t.Errorf("Rotate(Rotate(img, %v), %v) changed pixels", d, -d)
		}
	}
}

func TestRotate_ArbitraryRoundTrip(t *testing.T) {
	const (
		w, h = 40, 24
		// bilinear resampling runs twice, so the trip is approximate
		tolerance = 6
		border    = 3
	)
	img := ramp(w, h)

	for _, d := range []float64{30, -45, 17.5} {
		once, err := transform.Rotate(img, d)
		if err != nil {
			t.Fatalf("Rotate(%v) error = %v", d, err)
		}
		back, err := transform.Rotate(once, -d)
		if err != nil {
			t.Fatalf("Rotate(%v) error = %v", -d, err)
		}

		b := back.Bounds()
		if b.Dx() < w || b.Dy() < h {
			t.Fatalf("Rotate(%v) round trip canvas %v smaller than source", d, b.Size())
		}

		ox, oy := (b.Dx()-w)/2, (b.Dy()-h)/2
		for y := border; y < h-border; y++ {
			for x := border; x < w-border; x++ {
				want := img.NRGBAAt(x, y)
				if got := back.NRGBAAt(x+ox, y+oy); !near(got, want, tolerance) {
					t.Fatalf("Rotate(%v) round trip pixel (%d,%d) = %v, want %v", d, x, y, got, want)
				}
			}
		}
	}
}

func TestRotate_ArbitraryAngle(t *testing.T) {
	c := color.NRGBA{R: 200, G: 40, B: 90, A: 255}
	img := solid(40, 20, c)

	out, err := transform.Rotate(img, 30)
	if err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}

	want := transform.RotatedSize(40, 20, 30)
	if out.Bounds().Size() != want {
		t.Fatalf("Rotate(30) size = %v, want %v", out.Bounds().Size(), want)
	}
	if want.X < 40 || want.Y < 20 {
		t.Errorf("rotated canvas %v smaller than source", want)
	}

	center := out.NRGBAAt(want.X/2, want.Y/2)
	if center != c {
		t.Errorf("center pixel = %v, want %v", center, c)
	}
	if out.NRGBAAt(0, 0).A != 0 {
		t.Error("corner outside the rotated source should be transparent")
	}

	back, _ := transform.Rotate(out, -30)
	b := back.Bounds()
	if got := back.NRGBAAt(b.Dx()/2, b.Dy()/2); got != c {
		t.Errorf("round trip center = %v, want %v", got, c)
	}
}

func TestRotate_NonFinite(t *testing.T) {
	for _, d := range []float64{math.NaN(), math.Inf(1)} {
		if _, err := transform.Rotate(gradient(2, 2), d); !errors.Is(err, transform.ErrInvalidArgument) {
			t.Errorf("Rotate(%v) error = %v, want ErrInvalidArgument", d, err)
		}
	}
}

func TestFlip(t *testing.T) {
	img := gradient(4, 3)

	h, err := transform.Flip(img, transform.AxisHorizontal)
	if err != nil {
		t.Fatalf("Flip() error = %v", err)
	}
	if h.NRGBAAt(1, 0) != img.NRGBAAt(1, 2) {
		t.Error("horizontal flip should swap top and bottom rows")
	}

	v, _ := transform.Flip(img, transform.AxisVertical)
	if v.NRGBAAt(0, 1) != img.NRGBAAt(3, 1) {
		t.Error("vertical flip should swap left and right columns")
	}

	twice, _ := transform.Flip(v, transform.AxisVertical)
	if !samePixels(img, twice) {
		t.Error("double flip should restore the original")
	}

	sub := gradient(8, 8).SubImage(image.Rect(2, 3, 5, 5)).(*image.NRGBA)
	sv, err := transform.Flip(sub, transform.AxisVertical)
	if err != nil {
		t.Fatalf("Flip(sub-image) error = %v", err)
	}
	if sv.Bounds() != image.Rect(0, 0, 3, 2) || sv.NRGBAAt(0, 0) != sub.NRGBAAt(4, 3) {
		t.Errorf("Flip(sub-image) = %v with first pixel %v", sv.Bounds(), sv.NRGBAAt(0, 0))
	}

	if _, err := transform.Flip(img, "diagonal"); !errors.Is(err, transform.ErrInvalidArgument) {
		t.Errorf("Flip(diagonal) error = %v", err)
	}
}

func TestApplyFilter_ZeroIntensityIsIdentity(t *testing.T) {
	img := gradient(9, 9)

	for _, f := range transform.Filters {
		t.Run(string(f), func(t *testing.T) {
			out, err := transform.ApplyFilter(img, f, 0)
			if err != nil {
				t.Fatalf("ApplyFilter() error = %v", err)
			}
			if !samePixels(img, out) {
				t.Errorf("ApplyFilter(%s, 0) changed pixels", f)
			}
		})
	}
}

func TestApplyFilter_FullIntensity(t *testing.T) {
	img := gradient(6, 6)

	mono, err := transform.ApplyFilter(img, transform.FilterMono, 1)
	if err != nil {
		t.Fatalf("ApplyFilter() error = %v", err)
	}
	for i := 0; i < len(mono.Pix); i += 4 {
		if mono.Pix[i] != mono.Pix[i+1] || mono.Pix[i+1] != mono.Pix[i+2] {
			t.Fatalf("mono pixel %d not gray: %v", i/4, mono.Pix[i:i+4])
		}
	}

	white := solid(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	sepia, _ := transform.ApplyFilter(white, transform.FilterSepia, 1)
	if got := sepia.NRGBAAt(0, 0); got.R != 255 || got.G < got.B || got.B < 225 || got.B > 250 || got.A != 255 {
		t.Errorf("sepia(white) = %v, want a warm off-white", got)
	}
}

func TestApplyFilter_SubImage(t *testing.T) {
	big := gradient(8, 8)

	tests := []struct {
		name string
		rect image.Rectangle
	}{
		{"origin", image.Rect(0, 0, 2, 2)},
		{"offset", image.Rect(3, 4, 6, 7)},
	}

	for _, tt := range tests {
		sub := big.SubImage(tt.rect).(*image.NRGBA)

		for _, f := range transform.Filters {
			for _, intensity := range []float64{0, 0.5, 1} {
				out, err := transform.ApplyFilter(sub, f, intensity)
				if err != nil {
					t.Fatalf("%s: ApplyFilter(%s, %v) error = %v", tt.name, f, intensity, err)
				}
				if out.Bounds() != image.Rect(0, 0, tt.rect.Dx(), tt.rect.Dy()) {
					t.Fatalf("%s: ApplyFilter(%s, %v) bounds = %v", tt.name, f, intensity, out.Bounds())
				}
				if intensity > 0 {
					continue
				}
				for y := range tt.rect.Dy() {
					for x := range tt.rect.Dx() {
						if out.NRGBAAt(x, y) != big.NRGBAAt(tt.rect.Min.X+x, tt.rect.Min.Y+y) {
							t.Fatalf("%s: ApplyFilter(%s, 0) changed pixel (%d,%d)", tt.name, f, x, y)
						}
					}
				}
			}
		}
	}
}

func TestApplyFilter_BlendsBetween(t *testing.T) {
	img := solid(1, 1, color.NRGBA{R: 255, G: 0, B: 0, A: 255})

	full, _ := transform.ApplyFilter(img, transform.FilterMono, 1)
	half, _ := transform.ApplyFilter(img, transform.FilterMono, 0.5)

	f, h := full.NRGBAAt(0, 0), half.NRGBAAt(0, 0)
	if !(h.R < 255 && h.R > f.R) {
		t.Errorf("half intensity red = %d, want between %d and 255", h.R, f.R)
	}
}

func TestApplyFilter_PreservesAlpha(t *testing.T) {
	img := solid(2, 2, color.NRGBA{R: 10, G: 120, B: 240, A: 77})
	out, _ := transform.ApplyFilter(img, transform.FilterDramatic, 1)
	if out.NRGBAAt(1, 1).A != 77 {
		t.Errorf("alpha = %d, want 77", out.NRGBAAt(1, 1).A)
	}
}

func TestApplyFilter_Invalid(t *testing.T) {
	img := gradient(2, 2)

	tests := []struct {
		name      string
		filter    transform.Filter
		intensity float64
	}{
		{"unknown filter", "vaporwave", 1},
		{"negative", transform.FilterWarm, -0.1},
		{"above one", transform.FilterCool, 1.5},
		{"nan", transform.FilterNoir, math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := transform.ApplyFilter(img, tt.filter, tt.intensity); !errors.Is(err, transform.ErrInvalidArgument) {
				t.Errorf("ApplyFilter() error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestCompositeOver(t *testing.T) {
	base := gradient(5, 5)

	clear := image.NewNRGBA(base.Bounds())
	out, err := transform.CompositeOver(base, clear)
	if err != nil {
		t.Fatalf("CompositeOver() error = %v", err)
	}
	if !samePixels(base, out) {
		t.Error("transparent overlay changed base")
	}

	red := color.NRGBA{R: 255, A: 255}
	opaque := solid(5, 5, red)
	out, _ = transform.CompositeOver(base, opaque)
	if out.NRGBAAt(2, 2) != red {
		t.Errorf("opaque overlay pixel = %v", out.NRGBAAt(2, 2))
	}

	half := solid(5, 5, color.NRGBA{R: 255, A: 128})
	black := solid(5, 5, color.NRGBA{A: 255})
	out, _ = transform.CompositeOver(black, half)
	if got := out.NRGBAAt(0, 0); got.A != 255 || got.R < 126 || got.R > 130 {
		t.Errorf("half overlay pixel = %v", got)
	}

	if _, err := transform.CompositeOver(base, gradient(4, 5)); !errors.Is(err, transform.ErrInvalidArgument) {
		t.Errorf("size mismatch error = %v", err)
	}
}

func TestGenerateWatermarkLayer(t *testing.T) {
	wm := transform.Watermark{
		Text:         "CONFIDENTIAL",
		Opacity:      0.4,
		RelativeSize: 0.08,
		Angle:        -30,
		Spacing:      0.3,
	}

	layer, err := transform.GenerateWatermarkLayer(wm, image.Pt(300, 400))
	if err != nil {
		t.Fatalf("GenerateWatermarkLayer() error = %v", err)
	}

	if layer.Image.Bounds().Size() != image.Pt(300, 400) {
		t.Errorf("layer size = %v", layer.Image.Bounds().Size())
	}
	if layer.Tiles < 4 {
		t.Errorf("Tiles = %d, want the canvas covered", layer.Tiles)
	}

	var painted bool
	for i := 3; i < len(layer.Image.Pix); i += 4 {
		if layer.Image.Pix[i] != 0 {
			painted = true
			break
		}
	}
	if !painted {
		t.Error("layer has no visible pixels")
	}
}

func TestGenerateWatermarkLayer_ZeroOpacity(t *testing.T) {
	wm := transform.Watermark{Text: "DRAFT", Opacity: 0, RelativeSize: 0.1, Angle: 45, Spacing: 0.25}
	base := gradient(120, 80)

	layer, err := transform.GenerateWatermarkLayer(wm, base.Bounds().Size())
	if err != nil {
		t.Fatalf("GenerateWatermarkLayer() error = %v", err)
	}
	if layer.Tiles == 0 {
		t.Error("zero opacity must still run the tiling")
	}

	out, _ := transform.CompositeOver(base, layer.Image)
	if !samePixels(base, out) {
		t.Error("zero opacity watermark changed the base image")
	}
}

func TestGenerateWatermarkLayer_DenseGrid(t *testing.T) {
	wm := transform.Watermark{Text: "CONFIDENTIAL", Opacity: 0.5, RelativeSize: 0.05, Angle: 45, Spacing: 0.001}
	if _, err := transform.GenerateWatermarkLayer(wm, image.Pt(1024, 1024)); !errors.Is(err, transform.ErrInvalidArgument) {
		t.Errorf("spacing tighter than the text error = %v, want ErrInvalidArgument", err)
	}

	wm.RelativeSize, wm.Spacing = 0.01, 0.01
	if _, err := transform.GenerateWatermarkLayer(wm, image.Pt(1, 20000)); !errors.Is(err, transform.ErrInvalidArgument) {
		t.Errorf("sliver canvas error = %v, want ErrInvalidArgument", err)
	}

	layer, err := transform.GenerateWatermarkLayer(wm, image.Pt(200, 200))
	if err != nil {
		t.Fatalf("tightest accepted spacing error = %v", err)
	}
	if layer.Tiles == 0 {
		t.Error("tightest accepted spacing drew no tiles")
	}
}

func TestWatermark_Validate(t *testing.T) {
	valid := transform.Watermark{Text: "x", Opacity: 1, RelativeSize: 0.1, Spacing: 0.2}

	tests := []struct {
		name   string
		mutate func(*transform.Watermark)
	}{
		{"blank text", func(w *transform.Watermark) { w.Text = "  " }},
		{"opacity", func(w *transform.Watermark) { w.Opacity = 2 }},
		{"size", func(w *transform.Watermark) { w.RelativeSize = 0 }},
		{"size below minimum", func(w *transform.Watermark) { w.RelativeSize, w.Spacing = 0.001, 0.001 }},
		{"spacing", func(w *transform.Watermark) { w.Spacing = -1 }},
		{"spacing below text size", func(w *transform.Watermark) { w.Spacing = 0.001 }},
		{"angle", func(w *transform.Watermark) { w.Angle = math.Inf(-1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := valid
			tt.mutate(&w)
			if err := w.Validate(); !errors.Is(err, transform.ErrInvalidArgument) {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestFitRect(t *testing.T) {
	tests := []struct {
		name                   string
		cw, ch, pw, ph         float64
		want                   transform.Rect
	}{
		{"tall image on letter", 100, 400, 612, 792, transform.Rect{X: 207, Y: 0, W: 198, H: 792}},
		{"wide image on letter", 400, 100, 612, 792, transform.Rect{X: 0, Y: 319.5, W: 612, H: 153}},
		{"same aspect", 612, 792, 612, 792, transform.Rect{X: 0, Y: 0, W: 612, H: 792}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := transform.FitRect(tt.cw, tt.ch, tt.pw, tt.ph)
			if err != nil {
				t.Fatalf("FitRect() error = %v", err)
			}
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 ||
				math.Abs(got.W-tt.want.W) > 1e-9 || math.Abs(got.H-tt.want.H) > 1e-9 {
				t.Errorf("FitRect() = %+v, want %+v", got, tt.want)
			}
		})
	}

	if _, err := transform.FitRect(0, 10, 612, 792); !errors.Is(err, transform.ErrInvalidArgument) {
		t.Errorf("FitRect() zero width error = %v", err)
	}
}

func TestCodec(t *testing.T) {
	img := gradient(10, 6)

	pngBytes, err := transform.EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG() error = %v", err)
	}
	decoded, format, err := transform.Decode(pngBytes)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if format != "png" || !samePixels(img, decoded) {
		t.Errorf("png round trip format=%s equal=%v", format, samePixels(img, decoded))
	}

	jpg, err := transform.EncodeJPEG(img, 80)
	if err != nil {
		t.Fatalf("EncodeJPEG() error = %v", err)
	}
	decoded, format, err = transform.Decode(jpg)
	if err != nil || format != "jpeg" || decoded.Bounds().Size() != img.Bounds().Size() {
		t.Errorf("jpeg decode = %v, %s, %v", decoded.Bounds(), format, err)
	}

	if _, _, err := transform.Decode([]byte("not an image")); !errors.Is(err, transform.ErrImageCodec) {
		t.Errorf("Decode(garbage) error = %v, want ErrImageCodec", err)
	}
	if _, err := transform.EncodeJPEG(img, 0); !errors.Is(err, transform.ErrInvalidArgument) {
		t.Errorf("EncodeJPEG(quality 0) error = %v", err)
	}
}

func TestThumbnail(t *testing.T) {
	thumb := transform.Thumbnail(gradient(1000, 500), 320)
	if thumb.Bounds().Size() != image.Pt(320, 160) {
		t.Errorf("Thumbnail() size = %v", thumb.Bounds().Size())
	}

	small := transform.Thumbnail(gradient(100, 50), 320)
	if small.Bounds().Size() != image.Pt(100, 50) {
		t.Errorf("Thumbnail() upscaled to %v", small.Bounds().Size())
	}

	tall := transform.Preview(gradient(200, 2000), 1024)
	if tall.Bounds().Size() != image.Pt(102, 1024) {
		t.Errorf("Preview() size = %v", tall.Bounds().Size())
	}
}

func TestStrokeOverlay(t *testing.T) {
	ink := color.NRGBA{B: 255, A: 255}
	o := transform.StrokeOverlay{Strokes: []transform.Stroke{{
		Points: []transform.Point{{X: 0.1, Y: 0.5}, {X: 0.9, Y: 0.5}},
		Width:  0.1,
		Color:  ink,
	}}}

	base := solid(100, 100, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	out, err := transform.ApplyOverlay(base, o)
	if err != nil {
		t.Fatalf("ApplyOverlay() error = %v", err)
	}

	if got := out.NRGBAAt(50, 50); got != ink {
		t.Errorf("stroke center = %v, want %v", got, ink)
	}
	if got := out.NRGBAAt(50, 10); got != base.NRGBAAt(50, 10) {
		t.Errorf("pixel away from stroke = %v", got)
	}

	if _, err := (transform.StrokeOverlay{}).Rasterize(image.Pt(10, 10)); !errors.Is(err, transform.ErrInvalidArgument) {
		t.Errorf("empty overlay error = %v", err)
	}
}

func TestOperation_ApplyAll(t *testing.T) {
	half := 0.5
	ops := []transform.Operation{
		{Kind: transform.OpCrop, Crop: &transform.CropRect{X: 0, Y: 0, W: 0.5, H: 1}},
		{Kind: transform.OpRotate, Degrees: 90},
		{Kind: transform.OpFlip, Axis: transform.AxisVertical},
		{Kind: transform.OpFilter, Filter: transform.FilterWarm, Intensity: &half},
	}

	out, err := transform.ApplyAll(gradient(20, 10), ops)
	if err != nil {
		t.Fatalf("ApplyAll() error = %v", err)
	}
	if out.Bounds().Size() != image.Pt(10, 10) {
		t.Errorf("ApplyAll() size = %v", out.Bounds().Size())
	}

	_, err = transform.ApplyAll(gradient(4, 4), []transform.Operation{{Kind: "sharpen"}})
	if !errors.Is(err, transform.ErrInvalidArgument) {
		t.Errorf("unknown op error = %v", err)
	}
}
