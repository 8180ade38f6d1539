package models

import (
	"math"

	"go-tearfilm-inspector/pkg/validation"
)

// AnalysisResponse is the public view of one analysed image
type AnalysisResponse struct {
	ID                string  `json:"id"`
	Source            string  `json:"source"` // "upload", "http" or "azure"
	ImageURL          string  `json:"image_url,omitempty"`
	Timestamp         string  `json:"timestamp"`
	ProcessingTimeSec float64 `json:"processing_time_sec"`

	Preset       string `json:"preset"`
	Strategy     string `json:"strategy"`
	Ladder       string `json:"ladder"`
	FallbackUsed bool   `json:"fallback_used"`

	Width  int `json:"width"`
	Height int `json:"height"`

	Metrics RegionMetrics `json:"metrics"`
	Grade   GradeInfo     `json:"grade"`

	// ProcessedImage is the overlay as base64 encoded PNG
	ProcessedImage string `json:"processed_image,omitempty"`

	Warnings      []string                  `json:"warnings,omitempty"`
	QualityIssues []validation.QualityIssue `json:"quality_issues,omitempty"`
	Capture       *CaptureReport            `json:"capture,omitempty"`
}

// RegionMetrics describes the positive region inside the measured area
type RegionMetrics struct {
	PositivePercentage   float64 `json:"positive_percentage"`
	ComponentCount       int     `json:"component_count"`
	AverageComponentSize float64 `json:"average_component_size"`
	PositivePixels       int     `json:"positive_pixels"`
	RegionPixels         int     `json:"region_pixels"`
}

// GradeInfo is the clinical grade for the positive percentage
type GradeInfo struct {
	Level          int    `json:"level"`
	Label          string `json:"label"`
	Interpretation string `json:"interpretation"`
	Pattern        string `json:"pattern"`
}

// RoundPercentage rounds to one decimal for display
func RoundPercentage(p float64) float64 {
	return math.Round(p*10) / 10
}
