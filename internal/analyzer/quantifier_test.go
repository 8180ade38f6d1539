package analyzer

import (
	"errors"
	"math"
	"testing"
)

func TestQuantify_FullImage(t *testing.T) {
	m := maskFromRows(
		"##......",
		"##......",
		"......#.",
		"........",
	)

	metrics, err := Quantify(m, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if metrics.PositivePixels != 5 || metrics.RegionPixels != 32 {
		t.Errorf("Unexpected counts: %+v", metrics)
	}
	if math.Abs(metrics.PositivePercentage-100*5.0/32.0) > 1e-9 {
		t.Errorf("Unexpected percentage %f", metrics.PositivePercentage)
	}
	if metrics.ComponentCount != 2 {
		t.Errorf("Expected 2 components, got %d", metrics.ComponentCount)
	}
	if metrics.AverageComponentSize != 2.5 {
		t.Errorf("Expected average size 2.5, got %f", metrics.AverageComponentSize)
	}
}

func TestQuantify_RestrictedROI(t *testing.T) {
	m := maskFromRows(
		"####",
		"####",
		"....",
		"....",
	)
	roi := maskFromRows(
		"##..",
		"##..",
		"##..",
		"##..",
	)

	metrics, err := Quantify(m, roi)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if metrics.RegionPixels != 8 || metrics.PositivePixels != 4 {
		t.Errorf("Unexpected counts: %+v", metrics)
	}
	if metrics.PositivePercentage != 50 {
		t.Errorf("Expected 50%%, got %f", metrics.PositivePercentage)
	}
	if metrics.ComponentCount != 1 || metrics.AverageComponentSize != 4 {
		t.Errorf("Components must be counted inside the ROI only: %+v", metrics)
	}
}

func TestQuantify_NoComponents(t *testing.T) {
	metrics, err := Quantify(NewMask(5, 5), nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if metrics.ComponentCount != 0 || metrics.AverageComponentSize != 0 || metrics.PositivePercentage != 0 {
		t.Errorf("Expected zero metrics, got %+v", metrics)
	}
}

func TestQuantify_Bounds(t *testing.T) {
	for _, m := range []*Mask{NewMask(7, 3), FullMask(7, 3)} {
		metrics, err := Quantify(m, nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if metrics.PositivePercentage < 0 || metrics.PositivePercentage > 100 {
			t.Errorf("Percentage out of bounds: %f", metrics.PositivePercentage)
		}
	}
}

func TestQuantify_EmptyROI(t *testing.T) {
	_, err := Quantify(FullMask(4, 4), NewMask(4, 4))
	if !errors.Is(err, ErrEmptyRegion) {
		t.Errorf("Expected ErrEmptyRegion, got %v", err)
	}
}

func TestQuantify_DimensionMismatch(t *testing.T) {
	_, err := Quantify(NewMask(4, 4), FullMask(5, 4))
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Expected ErrDimensionMismatch, got %v", err)
	}

	_, err = Quantify(nil, nil)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Expected ErrDimensionMismatch for nil mask, got %v", err)
	}
}
