package analyzer

import (
	"context"
	"image"
	"sync"
	"time"

	"go-tearfilm-inspector/internal/logger"
	"go-tearfilm-inspector/pkg/validation"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AnalysisResult is the value returned to the caller for one image.
// It is built fresh per call and never shared between calls.
type AnalysisResult struct {
	ID                uuid.UUID
	Timestamp         time.Time
	ProcessingTimeSec float64

	Strategy     Strategy
	Ladder       string
	FallbackUsed bool

	Width  int
	Height int

	Mask           *Mask
	ProcessedImage *image.NRGBA
	Metrics        Metrics
	Grade          GradeResult

	Capture       CaptureMetrics
	QualityIssues []validation.QualityIssue
}

// BatchItem pairs a batch input index with its outcome
type BatchItem struct {
	Index  int
	Result AnalysisResult
	Err    error
}

// coreAnalyzer implements ImageAnalyzer and orchestrates the pipeline stages
type coreAnalyzer struct {
	workerPool        *WorkerPool
	metricsCalculator MetricsCalculator
	qualityValidator  *validation.QualityValidator
}

// NewImageAnalyzer creates an analyzer whose batch path runs on the given number of workers.
// workers <= 0 uses one worker per CPU.
func NewImageAnalyzer(workers int) (ImageAnalyzer, error) {
	workerPool := NewWorkerPool(workers)
	workerPool.Start()

	return &coreAnalyzer{
		workerPool:        workerPool,
		metricsCalculator: NewMetricsCalculator(),
		qualityValidator:  validation.NewQualityValidator(),
	}, nil
}

// pipelineRun holds the stage outputs of one attempt
type pipelineRun struct {
	mask    *Mask
	metrics Metrics
	grade   GradeResult
	overlay *image.NRGBA
}

// Analyze runs project → ROI → classify → refine → quantify → grade → render.
// A primary run rejected for its channel layout is retried once on grayscale
// intensity with percentile brightness unless opts.DisableFallback is set.
func (ca *coreAnalyzer) Analyze(img image.Image, opts AnalysisOptions) (AnalysisResult, error) {
	start := time.Now()

	if err := opts.Validate(); err != nil {
		return AnalysisResult{}, err
	}

	used := opts
	run, err := runPipeline(img, opts, Project)
	fallbackUsed := false
	if err != nil && isChannelLayoutError(err) && !opts.DisableFallback {
		used = opts.FallbackOptions()
		logger.WithFields(logrus.Fields{
			"strategy":          opts.Strategy,
			"fallback_strategy": used.Strategy,
			"percentile":        used.Percentile,
		}).WithError(err).Warn("Primary analysis rejected image channel layout, retrying with grayscale brightness")

		run, err = runPipeline(img, used, ProjectGray)
		fallbackUsed = true
	}
	if err != nil {
		return AnalysisResult{}, err
	}

	capture := ca.metricsCalculator.Calculate(img)
	issues := ca.qualityValidator.Validate(validation.ImageQualityMetrics{
		Width:          capture.Width,
		Height:         capture.Height,
		LaplacianVar:   capture.LaplacianVar,
		Brightness:     capture.Brightness,
		AvgSaturation:  capture.AvgSaturation,
		GlareFraction:  capture.GlareFraction,
		ChannelBalance: capture.ChannelBalance,
	})

	result := AnalysisResult{
		ID:             uuid.New(),
		Timestamp:      start,
		Strategy:       used.Strategy,
		Ladder:         ladderName(used.Ladder),
		FallbackUsed:   fallbackUsed,
		Width:          run.mask.Width,
		Height:         run.mask.Height,
		Mask:           run.mask,
		ProcessedImage: run.overlay,
		Metrics:        run.metrics,
		Grade:          run.grade,
		Capture:        capture,
		QualityIssues:  issues,
	}
	result.ProcessingTimeSec = time.Since(start).Seconds()

	logger.WithFields(logrus.Fields{
		"analysis_id":         result.ID.String(),
		"strategy":            result.Strategy,
		"fallback":            fallbackUsed,
		"positive_percentage": result.Metrics.PositivePercentage,
		"components":          result.Metrics.ComponentCount,
		"grade":               result.Grade.Grade.String(),
		"duration_sec":        result.ProcessingTimeSec,
	}).Debug("Analysis completed")

	return result, nil
}

// runPipeline performs one attempt with the given projector
func runPipeline(img image.Image, opts AnalysisOptions, project func(image.Image) (*Projection, error)) (pipelineRun, error) {
	if err := checkDimensions(img); err != nil {
		return pipelineRun{}, err
	}

	prepared := img
	if opts.Contrast != 0 && !isSingleChannel(img) {
		prepared = imaging.AdjustContrast(img, opts.Contrast)
	}

	proj, err := project(prepared)
	if err != nil {
		return pipelineRun{}, err
	}

	raw, err := Classify(proj, opts)
	if err != nil {
		return pipelineRun{}, err
	}
	mask := Refine(raw, opts.MinComponentSize)

	roi := BuildROI(proj, opts.ROIExclusion)
	metrics, err := Quantify(mask, roi)
	if err != nil {
		return pipelineRun{}, err
	}

	ladder, _ := LadderByName(opts.Ladder)
	overlay, err := Render(img, mask, opts.HighlightColor, opts.Alpha)
	if err != nil {
		return pipelineRun{}, err
	}

	return pipelineRun{
		mask:    mask,
		metrics: metrics,
		grade:   ladder.Grade(metrics),
		overlay: overlay,
	}, nil
}

// AnalyzeBatch fans images out over the worker pool. Items not started before
// ctx is done carry ctx.Err().
func (ca *coreAnalyzer) AnalyzeBatch(ctx context.Context, imgs []image.Image, opts AnalysisOptions) []BatchItem {
	items := make([]BatchItem, len(imgs))
	var wg sync.WaitGroup

	for i, img := range imgs {
		i, img := i, img
		items[i].Index = i

		wg.Add(1)
		err := ca.workerPool.Submit(ctx, func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				items[i].Err = err
				return
			}
			items[i].Result, items[i].Err = ca.Analyze(img, opts)
		})
		if err != nil {
			wg.Done()
			items[i].Err = err
		}
	}

	wg.Wait()
	return items
}

func (ca *coreAnalyzer) PoolStats() PoolStats {
	return ca.workerPool.GetStats()
}

// Close releases the worker pool
func (ca *coreAnalyzer) Close() error {
	ca.workerPool.Close()
	return nil
}

func ladderName(name string) string {
	if name == "" {
		return LadderStaining
	}
	return name
}
