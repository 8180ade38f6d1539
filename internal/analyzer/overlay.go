package analyzer

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Render blends masked pixels toward the highlight colour and copies the rest unchanged.
// Alpha is clamped to [0,1]. The source image is never modified.
func Render(img image.Image, mask *Mask, highlight RGB, alpha float64) (*image.NRGBA, error) {
	if err := checkDimensions(img); err != nil {
		return nil, err
	}
	out := imaging.Clone(img)
	w, h := out.Rect.Dx(), out.Rect.Dy()
	if mask == nil || mask.Width != w || mask.Height != h {
		return nil, fmt.Errorf("%w: overlay mask does not match %dx%d image", ErrDimensionMismatch, w, h)
	}

	a := clampFloat(alpha, 0, 1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask.Bits[y*w+x] {
				continue
			}
			px := out.Pix[y*out.Stride+x*4 : y*out.Stride+x*4+3]
			for c := 0; c < 3; c++ {
				px[c] = blend(px[c], highlight[c], a)
			}
		}
	}
	return out, nil
}

func blend(v, target uint8, alpha float64) uint8 {
	mixed := float64(v)*(1-alpha) + float64(target)*alpha
	return uint8(math.Round(clampFloat(mixed, 0, 255)))
}
