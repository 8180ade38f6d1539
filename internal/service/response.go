package service

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"time"

	"go-tearfilm-inspector/internal/analyzer"
	apperrors "go-tearfilm-inspector/internal/errors"
	"go-tearfilm-inspector/pkg/models"
	"go-tearfilm-inspector/pkg/validation"
)

const fallbackWarning = "Image carried no usable colour channels; it was analysed as grayscale brightness."

func (s *imageAnalysisService) toResponse(result analyzer.AnalysisResult, meta analysisContext) (*models.AnalysisResponse, error) {
	resp := &models.AnalysisResponse{
		ID:                result.ID.String(),
		Source:            meta.source,
		ImageURL:          meta.imageURL,
		Timestamp:         result.Timestamp.UTC().Format(time.RFC3339),
		ProcessingTimeSec: result.ProcessingTimeSec,
		Preset:            meta.preset,
		Strategy:          string(result.Strategy),
		Ladder:            result.Ladder,
		FallbackUsed:      result.FallbackUsed,
		Width:             result.Width,
		Height:            result.Height,
		Metrics: models.RegionMetrics{
			PositivePercentage:   models.RoundPercentage(result.Metrics.PositivePercentage),
			ComponentCount:       result.Metrics.ComponentCount,
			AverageComponentSize: result.Metrics.AverageComponentSize,
			PositivePixels:       result.Metrics.PositivePixels,
			RegionPixels:         result.Metrics.RegionPixels,
		},
		Grade: models.GradeInfo{
			Level:          int(result.Grade.Grade),
			Label:          result.Grade.Label,
			Interpretation: result.Grade.Interpretation,
			Pattern:        string(result.Grade.Pattern),
		},
		QualityIssues: result.QualityIssues,
	}

	if result.FallbackUsed {
		resp.Warnings = append(resp.Warnings, fallbackWarning)
	}
	for _, issue := range result.QualityIssues {
		resp.Warnings = append(resp.Warnings, issue.Message)
	}

	if meta.params.Detailed {
		c := result.Capture
		resp.Capture = s.reports.Build(validation.ImageQualityMetrics{
			Width:          c.Width,
			Height:         c.Height,
			LaplacianVar:   c.LaplacianVar,
			Brightness:     c.Brightness,
			AvgSaturation:  c.AvgSaturation,
			GlareFraction:  c.GlareFraction,
			ChannelBalance: c.ChannelBalance,
		})
	}

	if !meta.params.OmitImage && result.ProcessedImage != nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, result.ProcessedImage); err != nil {
			return nil, apperrors.NewInternalError("failed to encode overlay", err)
		}
		resp.ProcessedImage = base64.StdEncoding.EncodeToString(buf.Bytes())
	}
	return resp, nil
}
