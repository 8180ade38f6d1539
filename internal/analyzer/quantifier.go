package analyzer

import "fmt"

// Metrics summarises a refined mask over its region of interest
type Metrics struct {
	PositivePercentage   float64 `json:"positive_percentage"`
	ComponentCount       int     `json:"component_count"`
	AverageComponentSize float64 `json:"average_component_size"`
	PositivePixels       int     `json:"positive_pixels"`
	RegionPixels         int     `json:"region_pixels"`
}

// Quantify measures the positive fraction of roi (the whole image when roi is nil)
// and counts 8-connected lesions inside it
func Quantify(mask, roi *Mask) (Metrics, error) {
	if mask == nil {
		return Metrics{}, fmt.Errorf("%w: nil mask", ErrDimensionMismatch)
	}
	if roi == nil {
		roi = FullMask(mask.Width, mask.Height)
	}
	if !mask.SameSize(roi) {
		return Metrics{}, fmt.Errorf("%w: mask %dx%d, roi %dx%d",
			ErrDimensionMismatch, mask.Width, mask.Height, roi.Width, roi.Height)
	}

	region := roi.Count()
	if region == 0 {
		return Metrics{}, &EmptyRegionError{Total: len(roi.Bits), Excluded: len(roi.Bits)}
	}

	inside := mask.And(roi)
	positive := inside.Count()
	_, sizes := labelComponents(inside)

	metrics := Metrics{
		PositivePercentage: 100 * float64(positive) / float64(region),
		ComponentCount:     len(sizes),
		PositivePixels:     positive,
		RegionPixels:       region,
	}
	if len(sizes) > 0 {
		metrics.AverageComponentSize = float64(positive) / float64(len(sizes))
	}
	return metrics, nil
}
