package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go-tearfilm-inspector/internal/analyzer"
	"go-tearfilm-inspector/internal/config"
	apperrors "go-tearfilm-inspector/internal/errors"
	"go-tearfilm-inspector/internal/logger"
	"go-tearfilm-inspector/internal/observer"
	"go-tearfilm-inspector/internal/service"
	"go-tearfilm-inspector/internal/storage"
	"go-tearfilm-inspector/internal/strategy"
	"go-tearfilm-inspector/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Version is reported by the health check
const Version = "1.0.0"

// MetricsSource is satisfied by observer.MetricsObserver
type MetricsSource interface {
	Snapshot() observer.MetricsSnapshot
}

// MetricsResponse combines event counters with worker pool counters
type MetricsResponse struct {
	Analyses observer.MetricsSnapshot `json:"analyses"`
	Pool     analyzer.PoolStats       `json:"pool"`
}

type handler struct {
	svc     service.ImageAnalysisService
	metrics MetricsSource
	cfg     *config.Config
}

func NewHandler(svc service.ImageAnalysisService, metrics MetricsSource, cfg *config.Config) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	h := &handler{svc: svc, metrics: metrics, cfg: cfg}

	// Configure routes
	r.GET("/health", healthCheck)
	r.GET("/presets", h.listPresets)
	r.GET("/metrics", h.getMetrics)
	r.POST("/analyze", h.analyzeUpload)
	r.POST("/analyze/url", h.analyzeURL)
	r.POST("/analyze/batch", h.analyzeBatch)
	r.POST("/assess", h.assess)

	return r
}

// analyzeUpload handles multipart uploads: "image" file plus optional
// "preset", "options" (JSON), "omit_image" and "detailed" fields
func (h *handler) analyzeUpload(c *gin.Context) {
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	logRequest(c, "Processing image upload analysis request")

	fileHeader, err := c.FormFile("image")
	if err != nil {
		if isBodyTooLarge(err) {
			respondError(c, apperrors.NewTooLargeError("request body too large", err))
			return
		}
		respondError(c, apperrors.NewValidationError("multipart field \"image\" is required", err))
		return
	}
	if fileHeader.Size > h.cfg.MaxRequestBodySize {
		respondError(c, apperrors.NewTooLargeError("image exceeds size limit", nil))
		return
	}

	params := service.AnalysisParams{
		Preset:  c.PostForm("preset"),
		Options: json.RawMessage(c.PostForm("options")),
	}
	if params.OmitImage, err = formBool(c, "omit_image"); err != nil {
		respondError(c, err)
		return
	}
	if params.Detailed, err = formBool(c, "detailed"); err != nil {
		respondError(c, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, apperrors.NewInternalError("failed to read upload", err))
		return
	}
	defer file.Close()

	img, format, err := storage.DecodeImage(file, storage.DecodeLimits{
		MaxBytes:  h.cfg.MaxRequestBodySize,
		MaxPixels: h.cfg.MaxImagePixels,
	})
	if err != nil {
		if errors.Is(err, storage.ErrImageTooLarge) {
			respondError(c, apperrors.NewTooLargeError("image exceeds size limit", err))
			return
		}
		respondError(c, apperrors.NewProcessingError("upload is not a readable image", err))
		return
	}

	logger.WithFields(logrus.Fields{
		"filename": fileHeader.Filename,
		"format":   format,
		"preset":   params.Preset,
	}).Debug("Upload decoded")

	resp, err := h.svc.AnalyzeUpload(ctx, img, params)
	if err != nil {
		respondError(c, err)
		return
	}

	logCompletion(resp, time.Since(startTime))
	c.JSON(http.StatusOK, resp)
}

func (h *handler) analyzeURL(c *gin.Context) {
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	logRequest(c, "Processing URL analysis request")

	var req models.URLAnalysisRequest
	if !bindJSON(c, &req) {
		return
	}

	logger.WithFields(logrus.Fields{
		"url":    req.URL,
		"preset": req.Preset,
	}).Debug("Fetching image")

	resp, err := h.svc.AnalyzeURL(ctx, req.URL, service.AnalysisParams{
		Preset:    req.Preset,
		Options:   req.Options,
		OmitImage: req.OmitImage,
		Detailed:  req.Detailed,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	logCompletion(resp, time.Since(startTime))
	c.JSON(http.StatusOK, resp)
}

func (h *handler) analyzeBatch(c *gin.Context) {
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	logRequest(c, "Processing batch analysis request")

	var req models.BatchAnalysisRequest
	if !bindJSON(c, &req) {
		return
	}
	if len(req.URLs) > h.cfg.MaxBatchSize {
		respondError(c, apperrors.NewValidationError(
			fmt.Sprintf("batch of %d images exceeds the limit of %d", len(req.URLs), h.cfg.MaxBatchSize), nil))
		return
	}

	resp, err := h.svc.AnalyzeBatch(ctx, req.URLs, service.AnalysisParams{
		Preset:    req.Preset,
		Options:   req.Options,
		OmitImage: req.OmitImage,
		Detailed:  req.Detailed,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	logger.WithFields(logrus.Fields{
		"images":             len(req.URLs),
		"succeeded":          resp.Succeeded,
		"failed":             resp.Failed,
		"processing_time_ms": time.Since(startTime).Milliseconds(),
	}).Info("Batch analysis completed")

	c.JSON(http.StatusOK, resp)
}

func (h *handler) assess(c *gin.Context) {
	var req service.AssessmentRequest
	if !bindJSON(c, &req) {
		return
	}

	assessment, err := h.svc.Assess(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assessment)
}

func (h *handler) listPresets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"presets": h.svc.Presets(), "default": strategy.PresetDefault})
}

func (h *handler) getMetrics(c *gin.Context) {
	resp := MetricsResponse{Pool: h.svc.PoolStats()}
	if h.metrics != nil {
		resp.Analyses = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, resp)
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:  "available",
		Version: Version,
	})
}

// bindJSON decodes the body into dst, responding with an error when it cannot
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if isBodyTooLarge(err) {
			respondError(c, apperrors.NewTooLargeError("request body too large", err))
			return false
		}
		respondError(c, apperrors.NewValidationError("invalid request format", err))
		return false
	}
	return true
}

func formBool(c *gin.Context, key string) (bool, error) {
	v := c.PostForm(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, apperrors.NewValidationError(fmt.Sprintf("%s must be a boolean", key), err)
	}
	return b, nil
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func logRequest(c *gin.Context, msg string) {
	logger.WithFields(logrus.Fields{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"user_agent": c.Request.UserAgent(),
		"ip":         c.ClientIP(),
	}).Info(msg)
}

func logCompletion(resp *models.AnalysisResponse, duration time.Duration) {
	logger.WithFields(logrus.Fields{
		"analysis_id":         resp.ID,
		"source":              resp.Source,
		"preset":              resp.Preset,
		"strategy":            resp.Strategy,
		"positive_percentage": resp.Metrics.PositivePercentage,
		"grade":               resp.Grade.Label,
		"fallback":            resp.FallbackUsed,
		"processing_time_ms":  duration.Milliseconds(),
	}).Info("Image analysis completed successfully")
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			respondError(c, c.Errors.Last().Err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	if _, ok := apperrors.As(err); ok {
		return apperrors.GetStatusCode(err)
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	code := determineStatusCode(err)

	// Log the error with context
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	resp := service.ErrorResponse(err)
	if _, ok := apperrors.As(err); !ok {
		resp.Error = http.StatusText(code)
	}
	c.AbortWithStatusJSON(code, resp)
}
