package analyzer

import "math"

// BuildROI returns the measurement region after pupil and sclera exclusion.
// It returns nil, meaning the whole image, when no exclusion is enabled.
// Projections without colour planes treat every pixel as unsaturated.
func BuildROI(p *Projection, ex ROIExclusion) *Mask {
	if !ex.Enabled() {
		return nil
	}

	roi := FullMask(p.Width, p.Height)
	if ex.ExcludePupil {
		excludePupil(roi, p, ex)
	}
	if ex.ExcludeSclera {
		excludeSclera(roi, p, ex)
	}
	return roi
}

// excludePupil removes dark pixels inside a disk centred on the frame
func excludePupil(roi *Mask, p *Projection, ex ROIExclusion) {
	cx := float64(p.Width-1) / 2
	cy := float64(p.Height-1) / 2
	radius := ex.PupilRadiusFraction * math.Min(float64(p.Width), float64(p.Height))
	r2 := radius * radius

	for y := 0; y < p.Height; y++ {
		dy := float64(y) - cy
		for x := 0; x < p.Width; x++ {
			dx := float64(x) - cx
			i := y*p.Width + x
			if dx*dx+dy*dy <= r2 && p.Intensity[i] <= ex.PupilMaxIntensity {
				roi.Bits[i] = false
			}
		}
	}
}

// excludeSclera removes bright, nearly colourless pixels
func excludeSclera(roi *Mask, p *Projection, ex ROIExclusion) {
	for i := range roi.Bits {
		sat, val := 0.0, p.Intensity[i]
		if p.HasColor() {
			sat = float64(p.Saturation[i])
			val = float64(p.Value[i])
		}
		if sat < ex.ScleraMaxSaturation && val > ex.ScleraMinValue {
			roi.Bits[i] = false
		}
	}
}
