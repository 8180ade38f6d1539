package analyzer

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// ratioEpsilon keeps channel ratios finite on black pixels
const ratioEpsilon = 1e-6

// Projection holds the per-pixel auxiliary representations used by the classifier.
//
// Hue, Saturation and Value use a 0-255 encoding for every channel: hue 0-255
// spans the full 0-360 degree circle, so the fluorescein green/yellow band
// (40, 100) corresponds to roughly 56-141 degrees. Grayscale projections leave
// the HSV and ratio slices nil.
type Projection struct {
	Width     int
	Height    int
	Intensity []float64

	Hue        []uint8
	Saturation []uint8
	Value      []uint8

	GreenRatio  []float64
	YellowRatio []float64
}

// HasColor reports whether the HSV and ratio channels are populated
func (p *Projection) HasColor() bool {
	return p.Hue != nil
}

// Project converts an RGB image into intensity, HSV and channel-ratio planes.
// Single-channel images are rejected with an InvalidImageError flagged as a
// channel layout problem so callers may retry with ProjectGray.
func Project(img image.Image) (*Projection, error) {
	if err := checkDimensions(img); err != nil {
		return nil, err
	}
	if isSingleChannel(img) {
		return nil, &InvalidImageError{
			Reason:        "expected a 3-channel RGB image, got a single-channel colour model",
			ChannelLayout: true,
		}
	}

	src := imaging.Clone(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	n := w * h

	p := &Projection{
		Width:       w,
		Height:      h,
		Intensity:   make([]float64, n),
		Hue:         make([]uint8, n),
		Saturation:  make([]uint8, n),
		Value:       make([]uint8, n),
		GreenRatio:  make([]float64, n),
		YellowRatio: make([]float64, n),
	}

	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		for x := 0; x < w; x++ {
			i := y*w + x
			r := float64(row[x*4])
			g := float64(row[x*4+1])
			b := float64(row[x*4+2])

			p.Intensity[i] = (r + g + b) / 3
			hh, s, v := rgbToHSV(r/255, g/255, b/255)
			p.Hue[i] = scaleUnit(hh / 360)
			p.Saturation[i] = scaleUnit(s)
			p.Value[i] = scaleUnit(v)
			p.GreenRatio[i] = g / (r + b + ratioEpsilon)
			p.YellowRatio[i] = (r + g) / (2*b + 1)
		}
	}

	return p, nil
}

// ProjectGray builds an intensity-only projection from the luminance of any image.
// It accepts single-channel inputs and backs the grayscale fallback path.
func ProjectGray(img image.Image) (*Projection, error) {
	if err := checkDimensions(img); err != nil {
		return nil, err
	}

	gray := imaging.Grayscale(img)
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	p := &Projection{
		Width:     w,
		Height:    h,
		Intensity: make([]float64, w*h),
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p.Intensity[y*w+x] = float64(gray.Pix[y*gray.Stride+x*4])
		}
	}
	return p, nil
}

func checkDimensions(img image.Image) error {
	if img == nil {
		return &InvalidImageError{Reason: "image is nil"}
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return &InvalidImageError{Reason: "image has a zero dimension"}
	}
	return nil
}

func isSingleChannel(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16, *image.Alpha, *image.Alpha16:
		return true
	}
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model, color.AlphaModel, color.Alpha16Model:
		return true
	}
	return false
}

func scaleUnit(v float64) uint8 {
	return uint8(math.Round(clampFloat(v, 0, 1) * 255))
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// rgbToHSV takes channels in [0,1] and returns hue in degrees, saturation and value in [0,1]
func rgbToHSV(r, g, b float64) (h, s, v float64) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	delta := max - min

	v = max
	if max > 0 {
		s = delta / max
	}

	switch {
	case delta == 0:
		h = 0
	case max == r:
		h = 60 * ((g - b) / delta)
	case max == g:
		h = 60 * (((b - r) / delta) + 2)
	default:
		h = 60 * (((r - g) / delta) + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}
