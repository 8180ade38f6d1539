package service

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"time"

	"go-tearfilm-inspector/internal/analyzer"
	"go-tearfilm-inspector/internal/clinical"
	apperrors "go-tearfilm-inspector/internal/errors"
	"go-tearfilm-inspector/internal/observer"
	"go-tearfilm-inspector/internal/repository"
	"go-tearfilm-inspector/internal/storage"
	"go-tearfilm-inspector/internal/strategy"
	"go-tearfilm-inspector/pkg/models"
	"go-tearfilm-inspector/pkg/services"

	"golang.org/x/sync/errgroup"
)

// SourceUpload marks images received in the request body
const SourceUpload = "upload"

// maxConcurrentFetches bounds parallel downloads in a batch
const maxConcurrentFetches = 4

// AnalysisParams selects the configuration and response shape of an analysis
type AnalysisParams struct {
	Preset string
	// Options holds AnalysisOptions fields in JSON, applied over the preset
	Options   json.RawMessage
	OmitImage bool
	Detailed  bool
}

// AssessmentRequest carries clinical findings. ImageGrade, when set and no
// corneal staining was recorded, supplies it from an image analysis grade.
type AssessmentRequest struct {
	clinical.Parameters
	ImageGrade *int `json:"image_grade,omitempty"`
}

// ImageAnalysisService defines the operations exposed over HTTP
type ImageAnalysisService interface {
	AnalyzeUpload(ctx context.Context, img image.Image, params AnalysisParams) (*models.AnalysisResponse, error)
	AnalyzeURL(ctx context.Context, imageURL string, params AnalysisParams) (*models.AnalysisResponse, error)
	AnalyzeBatch(ctx context.Context, urls []string, params AnalysisParams) (*models.BatchAnalysisResponse, error)
	Assess(ctx context.Context, req AssessmentRequest) (*clinical.Assessment, error)

	// ResolveOptions merges the named preset with option overrides
	ResolveOptions(preset string, overrides json.RawMessage) (string, analyzer.AnalysisOptions, error)
	Presets() []strategy.Preset
	PoolStats() analyzer.PoolStats
}

type imageAnalysisService struct {
	imageRepo       repository.ImageRepository
	analyzer        analyzer.ImageAnalyzer
	presets         *strategy.Registry
	reports         *services.CaptureReportService
	events          observer.Subject
	analysisTimeout time.Duration
}

// NewImageAnalysisService creates a new image analysis service.
// events may be nil; analysisTimeout <= 0 disables the analysis deadline.
func NewImageAnalysisService(
	imageRepository repository.ImageRepository,
	imageAnalyzer analyzer.ImageAnalyzer,
	presets *strategy.Registry,
	events observer.Subject,
	analysisTimeout time.Duration,
) ImageAnalysisService {
	if presets == nil {
		presets = strategy.NewRegistry()
	}
	return &imageAnalysisService{
		imageRepo:       imageRepository,
		analyzer:        imageAnalyzer,
		presets:         presets,
		reports:         services.NewCaptureReportService(nil),
		events:          events,
		analysisTimeout: analysisTimeout,
	}
}

// AnalyzeUpload analyses an image already decoded by the caller
func (s *imageAnalysisService) AnalyzeUpload(ctx context.Context, img image.Image, params AnalysisParams) (*models.AnalysisResponse, error) {
	preset, opts, err := s.ResolveOptions(params.Preset, params.Options)
	if err != nil {
		return nil, err
	}
	return s.analyze(ctx, img, opts, analysisContext{source: SourceUpload, preset: preset, params: params})
}

// AnalyzeURL fetches the image through the repository and analyses it
func (s *imageAnalysisService) AnalyzeURL(ctx context.Context, imageURL string, params AnalysisParams) (*models.AnalysisResponse, error) {
	preset, opts, err := s.ResolveOptions(params.Preset, params.Options)
	if err != nil {
		return nil, err
	}

	img, err := s.fetch(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	return s.analyze(ctx, img, opts, analysisContext{
		source:   sourceOf(imageURL),
		imageURL: imageURL,
		preset:   preset,
		params:   params,
	})
}

// AnalyzeBatch downloads every URL concurrently, then analyses the images on
// the analyzer worker pool. A failed item never fails the batch.
func (s *imageAnalysisService) AnalyzeBatch(ctx context.Context, urls []string, params AnalysisParams) (*models.BatchAnalysisResponse, error) {
	if len(urls) == 0 {
		return nil, apperrors.NewValidationError("at least one URL is required", nil)
	}
	preset, opts, err := s.ResolveOptions(params.Preset, params.Options)
	if err != nil {
		return nil, err
	}

	items := make([]models.BatchItemResponse, len(urls))
	images := make([]image.Image, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, u := range urls {
		i, u := i, u
		items[i] = models.BatchItemResponse{Index: i, URL: u}
		g.Go(func() error {
			img, err := s.fetch(gctx, u)
			if err != nil {
				items[i].Error = errorResponse(err)
				return nil
			}
			images[i] = img
			return nil
		})
	}
	_ = g.Wait()

	// Analyse only what was fetched, remembering where each image came from
	var fetched []image.Image
	var positions []int
	for i, img := range images {
		if img != nil {
			fetched = append(fetched, img)
			positions = append(positions, i)
		}
	}

	actx, cancel := s.withDeadline(ctx)
	defer cancel()

	start := time.Now()
	for _, pos := range positions {
		s.publish(ctx, observer.AnalysisEvent{EventType: observer.AnalysisStarted, Source: sourceOf(urls[pos]), Preset: preset, Strategy: string(opts.Strategy)})
	}
	for _, item := range s.analyzer.AnalyzeBatch(actx, fetched, opts) {
		pos := positions[item.Index]
		meta := analysisContext{source: sourceOf(urls[pos]), imageURL: urls[pos], preset: preset, params: params}
		if item.Err != nil {
			appErr := mapAnalysisError(item.Err)
			s.publishFailure(ctx, meta, opts, time.Since(start), appErr)
			items[pos].Error = errorResponse(appErr)
			continue
		}
		resp, err := s.toResponse(item.Result, meta)
		if err != nil {
			items[pos].Error = errorResponse(err)
			continue
		}
		s.publishSuccess(ctx, meta, item.Result)
		items[pos].Result = resp
	}

	out := &models.BatchAnalysisResponse{Results: items}
	for _, item := range items {
		if item.Error != nil {
			out.Failed++
		} else {
			out.Succeeded++
		}
	}
	return out, nil
}

// Assess scores clinical findings. An image grade fills corneal staining when
// none was recorded.
func (s *imageAnalysisService) Assess(ctx context.Context, req AssessmentRequest) (*clinical.Assessment, error) {
	params := req.Parameters
	if req.ImageGrade != nil && params.CornealStaining == 0 {
		g := analyzer.Grade(*req.ImageGrade)
		if g < analyzer.GradeNone || g > analyzer.GradeSevere {
			return nil, apperrors.NewValidationError("image_grade must be between 0 and 4", nil)
		}
		params.CornealStaining = clinical.StainingFromGrade(g)
	}

	assessment, err := clinical.Assess(params)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid clinical parameters", err)
	}

	s.publish(ctx, observer.AnalysisEvent{
		EventType: observer.AssessmentCompleted,
		Success:   true,
		Metadata: map[string]interface{}{
			"dry_eye_type": assessment.DryEyeType,
			"severity":     assessment.Severity,
			"total_score":  assessment.TotalScore,
		},
	})
	return &assessment, nil
}

// ResolveOptions starts from the preset (default when empty) and decodes the
// overrides over it, so unspecified fields keep the preset's values
func (s *imageAnalysisService) ResolveOptions(presetName string, overrides json.RawMessage) (string, analyzer.AnalysisOptions, error) {
	preset, err := s.presets.Get(presetName)
	if err != nil {
		return "", analyzer.AnalysisOptions{}, apperrors.NewValidationError("unknown preset", err)
	}

	opts := preset.Options
	if len(bytes.TrimSpace(overrides)) > 0 && !bytes.Equal(bytes.TrimSpace(overrides), []byte("null")) {
		if err := json.Unmarshal(overrides, &opts); err != nil {
			return "", analyzer.AnalysisOptions{}, apperrors.NewValidationError("invalid options JSON", err)
		}
	}
	if err := opts.Validate(); err != nil {
		return "", analyzer.AnalysisOptions{}, apperrors.NewValidationError("invalid analysis options", err)
	}
	return preset.Name, opts, nil
}

func (s *imageAnalysisService) Presets() []strategy.Preset {
	return s.presets.List()
}

func (s *imageAnalysisService) PoolStats() analyzer.PoolStats {
	return s.analyzer.PoolStats()
}

// analysisContext carries request details through to the response and events
type analysisContext struct {
	source   string
	imageURL string
	preset   string
	params   AnalysisParams
}

func (s *imageAnalysisService) fetch(ctx context.Context, imageURL string) (image.Image, error) {
	start := time.Now()
	img, err := s.imageRepo.FetchImage(ctx, imageURL)
	if err != nil {
		appErr := mapFetchError(err)
		s.publish(ctx, observer.AnalysisEvent{
			EventType:      observer.ImageFetchFailed,
			Source:         sourceOf(imageURL),
			ProcessingTime: time.Since(start),
			ErrorMessage:   appErr.Error(),
			Metadata:       map[string]interface{}{"image_url": imageURL},
		})
		return nil, appErr
	}
	s.publish(ctx, observer.AnalysisEvent{
		EventType:      observer.ImageFetched,
		Source:         sourceOf(imageURL),
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       map[string]interface{}{"image_url": imageURL},
	})
	return img, nil
}

// analyze runs one image under the analysis deadline
func (s *imageAnalysisService) analyze(ctx context.Context, img image.Image, opts analyzer.AnalysisOptions, meta analysisContext) (*models.AnalysisResponse, error) {
	s.publish(ctx, observer.AnalysisEvent{EventType: observer.AnalysisStarted, Source: meta.source, Preset: meta.preset, Strategy: string(opts.Strategy)})

	actx, cancel := s.withDeadline(ctx)
	defer cancel()

	type outcome struct {
		result analyzer.AnalysisResult
		err    error
	}
	done := make(chan outcome, 1)
	start := time.Now()
	go func() {
		result, err := s.analyzer.Analyze(img, opts)
		done <- outcome{result, err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-actx.Done():
		out.err = actx.Err()
	}
	if out.err != nil {
		appErr := mapAnalysisError(out.err)
		s.publishFailure(ctx, meta, opts, time.Since(start), appErr)
		return nil, appErr
	}

	resp, err := s.toResponse(out.result, meta)
	if err != nil {
		return nil, err
	}
	s.publishSuccess(ctx, meta, out.result)
	return resp, nil
}

func (s *imageAnalysisService) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.analysisTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.analysisTimeout)
}

func (s *imageAnalysisService) publish(ctx context.Context, event observer.AnalysisEvent) {
	if s.events == nil {
		return
	}
	s.events.NotifyObservers(ctx, event)
}

func (s *imageAnalysisService) publishSuccess(ctx context.Context, meta analysisContext, result analyzer.AnalysisResult) {
	event := observer.AnalysisEvent{
		AnalysisID:     result.ID.String(),
		Source:         meta.source,
		Preset:         meta.preset,
		Strategy:       string(result.Strategy),
		Grade:          result.Grade.Grade.String(),
		Percentage:     result.Metrics.PositivePercentage,
		ProcessingTime: time.Duration(result.ProcessingTimeSec * float64(time.Second)),
		Success:        true,
	}
	if result.FallbackUsed {
		fallback := event
		fallback.EventType = observer.FallbackUsed
		s.publish(ctx, fallback)
	}
	event.EventType = observer.AnalysisCompleted
	s.publish(ctx, event)
}

func (s *imageAnalysisService) publishFailure(ctx context.Context, meta analysisContext, opts analyzer.AnalysisOptions, elapsed time.Duration, err error) {
	s.publish(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisFailed,
		Source:         meta.source,
		Preset:         meta.preset,
		Strategy:       string(opts.Strategy),
		ProcessingTime: elapsed,
		ErrorMessage:   err.Error(),
	})
}

func sourceOf(imageURL string) string {
	if storage.IsBlobURL(imageURL) {
		return repository.SourceAzure
	}
	return repository.SourceHTTP
}
