package models

// CaptureReport is the detailed capture quality breakdown for one photograph
type CaptureReport struct {
	QualityGrade string               `json:"quality_grade"` // "A" through "F"
	Scores       CaptureScores        `json:"scores"`
	RawMetrics   RawCaptureMetrics    `json:"raw_metrics"`
	Thresholds   AppliedThresholds    `json:"applied_thresholds"`
	Checks       []QualityCheckResult `json:"quality_checks"`
}

// CaptureScores are 0-100 sub-scores; Overall is their mean
type CaptureScores struct {
	Overall   float64 `json:"overall"`
	Sharpness float64 `json:"sharpness"`
	Exposure  float64 `json:"exposure"`
	Color     float64 `json:"color"`
}

// RawCaptureMetrics are the measured values behind the scores
type RawCaptureMetrics struct {
	Width             int        `json:"width"`
	Height            int        `json:"height"`
	TotalPixels       int        `json:"total_pixels"`
	AspectRatio       float64    `json:"aspect_ratio"`
	Brightness        float64    `json:"brightness"`
	LaplacianVariance float64    `json:"laplacian_variance"`
	AvgSaturation     float64    `json:"average_saturation"`
	GlareFraction     float64    `json:"glare_fraction"`
	ChannelBalance    [3]float64 `json:"channel_balance"`
	ChannelImbalance  float64    `json:"channel_imbalance"`
}

// AppliedThresholds shows the limits the checks were run against
type AppliedThresholds struct {
	MinLaplacianVariance float64 `json:"min_laplacian_variance"`
	MaxLaplacianVariance float64 `json:"max_laplacian_variance"`
	MinBrightness        float64 `json:"min_brightness"`
	MaxBrightness        float64 `json:"max_brightness"`
	MaxGlareFraction     float64 `json:"max_glare_fraction"`
	MaxSaturation        float64 `json:"max_saturation"`
	MinWidth             int     `json:"min_width"`
	MinHeight            int     `json:"min_height"`
}

// QualityCheckResult represents the result of an individual quality check
type QualityCheckResult struct {
	CheckName      string  `json:"check_name"`
	Passed         bool    `json:"passed"`
	Severity       string  `json:"severity"` // "warning" or "info" when failed, "" when passed
	ActualValue    float64 `json:"actual_value"`
	ThresholdValue float64 `json:"threshold_value"`
	Message        string  `json:"message"`
}
