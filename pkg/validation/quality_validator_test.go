package validation

import (
	"testing"
)

func TestNewQualityValidator(t *testing.T) {
	validator := NewQualityValidator()
	if validator == nil {
		t.Fatal("Expected non-nil quality validator")
	}

	expected := DefaultQualityThresholds().MinLaplacianVariance
	if validator.thresholds.MinLaplacianVariance != expected {
		t.Errorf("Expected MinLaplacianVariance to be %f, got %f", expected, validator.thresholds.MinLaplacianVariance)
	}
}

func TestNewQualityValidatorWithThresholds(t *testing.T) {
	customThresholds := QualityThresholds{
		MinLaplacianVariance: 500.0,
		MinBrightness:        100.0,
		MaxBrightness:        200.0,
	}

	validator := NewQualityValidatorWithThresholds(customThresholds)
	if validator.Thresholds().MinLaplacianVariance != 500.0 {
		t.Errorf("Expected custom MinLaplacianVariance to be 500.0, got %f", validator.Thresholds().MinLaplacianVariance)
	}
}

func goodCapture() ImageQualityMetrics {
	return ImageQualityMetrics{
		Width:          1280,
		Height:         960,
		LaplacianVar:   300.0,
		Brightness:     110.0,
		AvgSaturation:  0.4,
		GlareFraction:  0.01,
		ChannelBalance: [3]float64{0.4, 0.5, 0.3},
	}
}

func TestValidate_GoodCapture(t *testing.T) {
	validator := NewQualityValidator()

	issues := validator.Validate(goodCapture())
	if len(issues) != 0 {
		t.Errorf("Expected no issues for a good capture, got %+v", issues)
	}
}

func TestValidate_Issues(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(m *ImageQualityMetrics)
		wantType string
	}{
		{"low resolution", func(m *ImageQualityMetrics) { m.Width, m.Height = 100, 80 }, "low_resolution"},
		{"blurry", func(m *ImageQualityMetrics) { m.LaplacianVar = 5 }, "blurriness"},
		{"noisy", func(m *ImageQualityMetrics) { m.LaplacianVar = 10000 }, "noise"},
		{"dark", func(m *ImageQualityMetrics) { m.Brightness = 10 }, "too_dark"},
		{"bright", func(m *ImageQualityMetrics) { m.Brightness = 240 }, "too_bright"},
		{"glare", func(m *ImageQualityMetrics) { m.GlareFraction = 0.2 }, "glare"},
		{"saturated", func(m *ImageQualityMetrics) { m.AvgSaturation = 0.99 }, "oversaturation"},
	}

	validator := NewQualityValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := goodCapture()
			tt.mutate(&m)

			issues := validator.Validate(m)
			if len(issues) != 1 {
				t.Fatalf("Expected exactly one issue, got %+v", issues)
			}
			if issues[0].Type != tt.wantType {
				t.Errorf("Expected issue type %q, got %q", tt.wantType, issues[0].Type)
			}
			if issues[0].Message == "" {
				t.Error("Expected a non-empty message")
			}
		})
	}
}

func TestValidate_NeverCritical(t *testing.T) {
	validator := NewQualityValidator()

	worst := ImageQualityMetrics{
		Width:         10,
		Height:        10,
		LaplacianVar:  0,
		Brightness:    0,
		AvgSaturation: 1,
		GlareFraction: 1,
	}
	issues := validator.Validate(worst)
	if len(issues) == 0 {
		t.Fatal("Expected issues for a degenerate capture")
	}
	if validator.HasCriticalIssues(issues) {
		t.Error("Capture quality issues should be advisory, not critical")
	}
}

func TestConvertIssuesToMessages(t *testing.T) {
	validator := NewQualityValidator()
	issues := []QualityIssue{
		{Type: "a", Message: "first"},
		{Type: "b", Message: "second"},
	}

	messages := validator.ConvertIssuesToMessages(issues)
	if len(messages) != 2 || messages[0] != "first" || messages[1] != "second" {
		t.Errorf("Unexpected messages: %v", messages)
	}
}
