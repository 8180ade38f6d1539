package validation

import "fmt"

// QualityThresholds defines configurable thresholds for capture quality checks
type QualityThresholds struct {
	// Sharpness thresholds
	MinLaplacianVariance float64
	MaxLaplacianVariance float64

	// Brightness thresholds, 0-255 mean gray level
	MinBrightness float64
	MaxBrightness float64

	// Glare: fraction of pixels at or above the specular level
	MaxGlareFraction float64

	// Saturation threshold, 0-1
	MaxSaturation float64

	// Resolution thresholds
	MinWidth  int
	MinHeight int
}

// DefaultQualityThresholds returns thresholds tuned for slit-lamp photographs
func DefaultQualityThresholds() QualityThresholds {
	return QualityThresholds{
		MinLaplacianVariance: 20.0,
		MaxLaplacianVariance: 4000.0,
		MinBrightness:        25.0,
		MaxBrightness:        220.0,
		MaxGlareFraction:     0.05,
		MaxSaturation:        0.95,
		MinWidth:             320,
		MinHeight:            240,
	}
}

// QualityValidator handles capture quality validation logic
type QualityValidator struct {
	thresholds QualityThresholds
}

// NewQualityValidator creates a new quality validator with default thresholds
func NewQualityValidator() *QualityValidator {
	return &QualityValidator{
		thresholds: DefaultQualityThresholds(),
	}
}

// NewQualityValidatorWithThresholds creates a quality validator with custom thresholds
func NewQualityValidatorWithThresholds(thresholds QualityThresholds) *QualityValidator {
	return &QualityValidator{
		thresholds: thresholds,
	}
}

// Thresholds returns the thresholds in use
func (qv *QualityValidator) Thresholds() QualityThresholds {
	return qv.thresholds
}

// QualityIssue represents a quality validation issue
type QualityIssue struct {
	Type        string  `json:"type"`
	Message     string  `json:"message"`
	Severity    string  `json:"severity"` // "error", "warning", "info"
	ActualValue float64 `json:"actual_value,omitempty"`
	Threshold   float64 `json:"threshold,omitempty"`
}

// ImageQualityMetrics represents the capture metrics needed for quality validation
type ImageQualityMetrics struct {
	Width          int
	Height         int
	LaplacianVar   float64
	Brightness     float64
	AvgSaturation  float64
	GlareFraction  float64
	ChannelBalance [3]float64
}

// Validate checks a capture against the thresholds. Every issue is advisory:
// analysis still runs on a poor capture, the caller just gets told about it.
func (qv *QualityValidator) Validate(metrics ImageQualityMetrics) []QualityIssue {
	var issues []QualityIssue

	// 1. Resolution
	if metrics.Width < qv.thresholds.MinWidth || metrics.Height < qv.thresholds.MinHeight {
		issues = append(issues, QualityIssue{
			Type:        "low_resolution",
			Message:     fmt.Sprintf("Image is %dx%d; lesion counts are unreliable below %dx%d.", metrics.Width, metrics.Height, qv.thresholds.MinWidth, qv.thresholds.MinHeight),
			Severity:    "warning",
			ActualValue: float64(metrics.Width * metrics.Height),
			Threshold:   float64(qv.thresholds.MinWidth * qv.thresholds.MinHeight),
		})
	}

	// 2. Sharpness (Laplacian variance)
	if metrics.LaplacianVar < qv.thresholds.MinLaplacianVariance {
		issues = append(issues, QualityIssue{
			Type:        "blurriness",
			Message:     "Image is out of focus. Refocus the slit lamp on the corneal surface.",
			Severity:    "warning",
			ActualValue: metrics.LaplacianVar,
			Threshold:   qv.thresholds.MinLaplacianVariance,
		})
	} else if metrics.LaplacianVar > qv.thresholds.MaxLaplacianVariance {
		issues = append(issues, QualityIssue{
			Type:        "noise",
			Message:     "Image is very noisy. Lower the camera gain.",
			Severity:    "info",
			ActualValue: metrics.LaplacianVar,
			Threshold:   qv.thresholds.MaxLaplacianVariance,
		})
	}

	// 3. Exposure
	if metrics.Brightness < qv.thresholds.MinBrightness {
		issues = append(issues, QualityIssue{
			Type:        "too_dark",
			Message:     "Image is underexposed. Increase illumination or exposure.",
			Severity:    "warning",
			ActualValue: metrics.Brightness,
			Threshold:   qv.thresholds.MinBrightness,
		})
	} else if metrics.Brightness > qv.thresholds.MaxBrightness {
		issues = append(issues, QualityIssue{
			Type:        "too_bright",
			Message:     "Image is overexposed. Reduce illumination or exposure.",
			Severity:    "warning",
			ActualValue: metrics.Brightness,
			Threshold:   qv.thresholds.MaxBrightness,
		})
	}

	// 4. Specular glare inflates brightness-based strategies
	if metrics.GlareFraction > qv.thresholds.MaxGlareFraction {
		issues = append(issues, QualityIssue{
			Type:        "glare",
			Message:     "Strong specular reflections detected. Reposition the light source.",
			Severity:    "warning",
			ActualValue: metrics.GlareFraction,
			Threshold:   qv.thresholds.MaxGlareFraction,
		})
	}

	// 5. Saturation
	if metrics.AvgSaturation > qv.thresholds.MaxSaturation {
		issues = append(issues, QualityIssue{
			Type:        "oversaturation",
			Message:     "Colours are clipped. Check the blue exciter filter and white balance.",
			Severity:    "info",
			ActualValue: metrics.AvgSaturation,
			Threshold:   qv.thresholds.MaxSaturation,
		})
	}

	return issues
}

// ConvertIssuesToMessages flattens quality issues to their messages
func (qv *QualityValidator) ConvertIssuesToMessages(issues []QualityIssue) []string {
	var messages []string
	for _, issue := range issues {
		messages = append(messages, issue.Message)
	}
	return messages
}

// HasCriticalIssues checks if there are any critical (error severity) issues
func (qv *QualityValidator) HasCriticalIssues(issues []QualityIssue) bool {
	for _, issue := range issues {
		if issue.Severity == "error" {
			return true
		}
	}
	return false
}
