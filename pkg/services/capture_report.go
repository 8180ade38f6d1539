package services

import (
	"math"

	"go-tearfilm-inspector/pkg/models"
	"go-tearfilm-inspector/pkg/validation"
)

// CaptureReportService turns capture metrics into a scored quality report
type CaptureReportService struct {
	validator *validation.QualityValidator
}

// NewCaptureReportService creates a report service using the validator's thresholds
func NewCaptureReportService(validator *validation.QualityValidator) *CaptureReportService {
	if validator == nil {
		validator = validation.NewQualityValidator()
	}
	return &CaptureReportService{validator: validator}
}

// Build scores a capture. Every check is listed, passed or not.
func (s *CaptureReportService) Build(m validation.ImageQualityMetrics) *models.CaptureReport {
	t := s.validator.Thresholds()

	raw := models.RawCaptureMetrics{
		Width:             m.Width,
		Height:            m.Height,
		TotalPixels:       m.Width * m.Height,
		Brightness:        m.Brightness,
		LaplacianVariance: m.LaplacianVar,
		AvgSaturation:     m.AvgSaturation,
		GlareFraction:     m.GlareFraction,
		ChannelBalance:    m.ChannelBalance,
		ChannelImbalance:  channelImbalance(m.ChannelBalance),
	}
	if m.Height > 0 {
		raw.AspectRatio = float64(m.Width) / float64(m.Height)
	}

	issues := s.validator.Validate(m)

	scores := models.CaptureScores{
		Sharpness: sharpnessScore(m.LaplacianVar, t.MinLaplacianVariance),
		Exposure:  exposureScore(m.GlareFraction, underexposure(m.Brightness, t.MinBrightness)),
		Color:     colorScore(m.AvgSaturation, raw.ChannelImbalance),
	}
	scores.Overall = (scores.Sharpness + scores.Exposure + scores.Color) / 3

	return &models.CaptureReport{
		QualityGrade: qualityGrade(scores.Overall, issues, s.validator),
		Scores:       scores,
		RawMetrics:   raw,
		Thresholds: models.AppliedThresholds{
			MinLaplacianVariance: t.MinLaplacianVariance,
			MaxLaplacianVariance: t.MaxLaplacianVariance,
			MinBrightness:        t.MinBrightness,
			MaxBrightness:        t.MaxBrightness,
			MaxGlareFraction:     t.MaxGlareFraction,
			MaxSaturation:        t.MaxSaturation,
			MinWidth:             t.MinWidth,
			MinHeight:            t.MinHeight,
		},
		Checks: checks(raw, t, issues),
	}
}

// checks lists one result per validator dimension, marking the failed ones
func checks(raw models.RawCaptureMetrics, t validation.QualityThresholds, issues []validation.QualityIssue) []models.QualityCheckResult {
	failed := make(map[string]validation.QualityIssue, len(issues))
	for _, issue := range issues {
		failed[issue.Type] = issue
	}

	result := func(name string, actual, threshold float64, types ...string) models.QualityCheckResult {
		for _, typ := range types {
			if issue, ok := failed[typ]; ok {
				return models.QualityCheckResult{
					CheckName:      name,
					Severity:       issue.Severity,
					ActualValue:    issue.ActualValue,
					ThresholdValue: issue.Threshold,
					Message:        issue.Message,
				}
			}
		}
		return models.QualityCheckResult{CheckName: name, Passed: true, ActualValue: actual, ThresholdValue: threshold, Message: "ok"}
	}

	return []models.QualityCheckResult{
		result("resolution", float64(raw.TotalPixels), float64(t.MinWidth*t.MinHeight), "low_resolution"),
		result("sharpness", raw.LaplacianVariance, t.MinLaplacianVariance, "blurriness", "noise"),
		result("exposure", raw.Brightness, t.MinBrightness, "too_dark", "too_bright"),
		result("glare", raw.GlareFraction, t.MaxGlareFraction, "glare"),
		result("saturation", raw.AvgSaturation, t.MaxSaturation, "oversaturation"),
	}
}

func channelImbalance(balance [3]float64) float64 {
	hi := math.Max(math.Max(balance[0], balance[1]), balance[2])
	lo := math.Min(math.Min(balance[0], balance[1]), balance[2])
	return hi - lo
}

func sharpnessScore(variance, threshold float64) float64 {
	if threshold <= 0 || variance >= threshold*2 {
		return 100.0
	}
	if variance >= threshold {
		return 50.0 + (variance-threshold)/threshold*50.0
	}
	return variance / threshold * 50.0
}

// underexposure is how far mean brightness falls short of the minimum, as a fraction
func underexposure(brightness, minBrightness float64) float64 {
	if minBrightness <= 0 || brightness >= minBrightness {
		return 0
	}
	return (minBrightness - brightness) / minBrightness
}

func exposureScore(overexp, underexp float64) float64 {
	totalBadExposure := overexp + underexp
	if totalBadExposure < 0.05 {
		return 100.0
	}
	if totalBadExposure < 0.15 {
		return 100.0 - totalBadExposure*500
	}
	return math.Max(0, 50.0-totalBadExposure*200)
}

// colorScore penalizes clipped saturation and channel imbalance. Fluorescein
// photographs are strongly green, so the imbalance penalty is mild.
func colorScore(saturation, imbalance float64) float64 {
	satScore := 100.0
	if saturation > 0.8 {
		satScore = 100.0 - (saturation-0.8)*250
	}
	balanceScore := math.Max(0, 100.0-imbalance*100)
	return (satScore + balanceScore) / 2
}

func qualityGrade(overall float64, issues []validation.QualityIssue, v *validation.QualityValidator) string {
	warnings := 0
	for _, issue := range issues {
		if issue.Severity == "warning" {
			warnings++
		}
	}
	switch {
	case v.HasCriticalIssues(issues):
		return "F"
	case warnings > 1:
		return "D"
	case overall < 70 || warnings == 1:
		return "C"
	case overall < 85:
		return "B"
	default:
		return "A"
	}
}
