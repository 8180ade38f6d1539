package analyzer

import (
	"context"
	"image"
)

// ImageAnalyzer defines the main interface for image analysis
type ImageAnalyzer interface {
	// Analyze runs the full pipeline on one image
	Analyze(img image.Image, opts AnalysisOptions) (AnalysisResult, error)

	// AnalyzeBatch analyses images concurrently; results keep input order
	AnalyzeBatch(ctx context.Context, imgs []image.Image, opts AnalysisOptions) []BatchItem

	// PoolStats reports the batch worker pool counters
	PoolStats() PoolStats

	// Lifecycle management
	Close() error
}

// MetricsCalculator handles capture metrics computation
type MetricsCalculator interface {
	Calculate(img image.Image) CaptureMetrics
}
