package analyzer

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestNewMetricsCalculator(t *testing.T) {
	calc := NewMetricsCalculator()
	if calc == nil {
		t.Error("Expected non-nil metrics calculator")
	}
}

func TestCalculate_UniformGray(t *testing.T) {
	calc := NewMetricsCalculator()
	img := createTestImage(100, 100, color.RGBA{128, 128, 128, 255})

	m := calc.Calculate(img)

	if m.Width != 100 || m.Height != 100 {
		t.Errorf("Unexpected size %dx%d", m.Width, m.Height)
	}
	if math.Abs(m.Brightness-128) > 0.5 {
		t.Errorf("Expected brightness ~128, got %f", m.Brightness)
	}
	if m.LaplacianVar != 0 {
		t.Errorf("Expected zero Laplacian variance for a flat image, got %f", m.LaplacianVar)
	}
	if m.AvgSaturation != 0 {
		t.Errorf("Expected zero saturation, got %f", m.AvgSaturation)
	}
	if m.GlareFraction != 0 {
		t.Errorf("Expected no glare, got %f", m.GlareFraction)
	}
	for i, c := range m.ChannelBalance {
		if math.Abs(c-128.0/255.0) > 1e-9 {
			t.Errorf("channel %d: expected %f, got %f", i, 128.0/255.0, c)
		}
	}
}

func TestCalculate_Glare(t *testing.T) {
	calc := NewMetricsCalculator()
	img := createTestImage(10, 10, black)
	fillRect(img, 0, 0, 10, 2, white)

	m := calc.Calculate(img)
	if math.Abs(m.GlareFraction-0.2) > 1e-9 {
		t.Errorf("Expected 20%% glare, got %f", m.GlareFraction)
	}
}

func TestCalculate_Sharpness(t *testing.T) {
	calc := NewMetricsCalculator()

	checker := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if (x+y)%2 == 0 {
				checker.Set(x, y, white)
			} else {
				checker.Set(x, y, black)
			}
		}
	}

	sharp := calc.Calculate(checker).LaplacianVar
	flat := calc.Calculate(createTestImage(20, 20, white)).LaplacianVar
	if sharp <= flat {
		t.Errorf("Expected checkerboard variance %f to exceed flat %f", sharp, flat)
	}
}

func TestCalculate_Degenerate(t *testing.T) {
	calc := NewMetricsCalculator()

	if m := calc.Calculate(nil); m != (CaptureMetrics{}) {
		t.Errorf("Expected zero metrics for nil image, got %+v", m)
	}
	if m := calc.Calculate(createTestImage(2, 2, white)); m.LaplacianVar != 0 {
		t.Errorf("Expected zero variance below 3x3, got %f", m.LaplacianVar)
	}
}
