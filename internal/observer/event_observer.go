package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// AnalysisEvent represents an analysis event
type AnalysisEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	AnalysisID     string                 `json:"analysis_id,omitempty"`
	Source         string                 `json:"source,omitempty"`
	Preset         string                 `json:"preset,omitempty"`
	Strategy       string                 `json:"strategy,omitempty"`
	Grade          string                 `json:"grade,omitempty"`
	Percentage     float64                `json:"percentage,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of analysis event
type EventType string

const (
	// AnalysisStarted when analysis begins
	AnalysisStarted EventType = "analysis_started"
	// AnalysisCompleted when analysis finishes successfully
	AnalysisCompleted EventType = "analysis_completed"
	// AnalysisFailed when analysis fails
	AnalysisFailed EventType = "analysis_failed"
	// FallbackUsed when the grayscale fallback produced the result
	FallbackUsed EventType = "fallback_used"
	// ImageFetched when image is successfully fetched
	ImageFetched EventType = "image_fetched"
	// ImageFetchFailed when image fetch fails
	ImageFetchFailed EventType = "image_fetch_failed"
	// AssessmentCompleted when a clinical assessment was scored
	AssessmentCompleted EventType = "assessment_completed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event AnalysisEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event AnalysisEvent)
}

// LoggingObserver logs analysis events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles analysis events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}
	for k, v := range map[string]string{
		"analysis_id": event.AnalysisID,
		"source":      event.Source,
		"preset":      event.Preset,
		"strategy":    event.Strategy,
		"grade":       event.Grade,
		"error":       event.ErrorMessage,
	} {
		if v != "" {
			fields[k] = v
		}
	}
	if event.EventType == AnalysisCompleted {
		fields["percentage"] = event.Percentage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case AnalysisStarted:
		entry.Debug("Image analysis started")
	case AnalysisCompleted:
		entry.Info("Image analysis completed")
	case AnalysisFailed:
		entry.Error("Image analysis failed")
	case FallbackUsed:
		entry.Warn("Grayscale fallback used")
	case ImageFetched:
		entry.Debug("Image fetched successfully")
	case ImageFetchFailed:
		entry.Error("Image fetch failed")
	case AssessmentCompleted:
		entry.Info("Clinical assessment completed")
	default:
		entry.Info("Analysis event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsSnapshot is the JSON view of MetricsObserver
type MetricsSnapshot struct {
	TotalAnalyses         int64            `json:"total_analyses"`
	SuccessfulAnalyses    int64            `json:"successful_analyses"`
	FailedAnalyses        int64            `json:"failed_analyses"`
	FallbackAnalyses      int64            `json:"fallback_analyses"`
	FetchFailures         int64            `json:"fetch_failures"`
	Assessments           int64            `json:"assessments"`
	AvgProcessingTimeSec  float64          `json:"avg_processing_time_sec"`
	GradeCounts           map[string]int64 `json:"grade_counts"`
	StrategyCounts        map[string]int64 `json:"strategy_counts"`
	TotalProcessingTimeMs int64            `json:"total_processing_time_ms"`
}

// MetricsObserver collects metrics from analysis events
type MetricsObserver struct {
	mu                  sync.RWMutex
	totalAnalyses       int64
	successfulAnalyses  int64
	failedAnalyses      int64
	fallbackAnalyses    int64
	fetchFailures       int64
	assessments         int64
	totalProcessingTime time.Duration
	gradeCounts         map[string]int64
	strategyCounts      map[string]int64
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		gradeCounts:    make(map[string]int64),
		strategyCounts: make(map[string]int64),
	}
}

// OnEvent handles analysis events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case AnalysisStarted:
		o.totalAnalyses++
	case AnalysisCompleted:
		o.successfulAnalyses++
		o.totalProcessingTime += event.ProcessingTime
		if event.Grade != "" {
			o.gradeCounts[event.Grade]++
		}
		if event.Strategy != "" {
			o.strategyCounts[event.Strategy]++
		}
	case AnalysisFailed:
		o.failedAnalyses++
	case FallbackUsed:
		o.fallbackAnalyses++
	case ImageFetchFailed:
		o.fetchFailures++
	case AssessmentCompleted:
		o.assessments++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// Snapshot returns a copy of the current counters
func (o *MetricsObserver) Snapshot() MetricsSnapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()

	s := MetricsSnapshot{
		TotalAnalyses:         o.totalAnalyses,
		SuccessfulAnalyses:    o.successfulAnalyses,
		FailedAnalyses:        o.failedAnalyses,
		FallbackAnalyses:      o.fallbackAnalyses,
		FetchFailures:         o.fetchFailures,
		Assessments:           o.assessments,
		TotalProcessingTimeMs: o.totalProcessingTime.Milliseconds(),
		GradeCounts:           make(map[string]int64, len(o.gradeCounts)),
		StrategyCounts:        make(map[string]int64, len(o.strategyCounts)),
	}
	if o.successfulAnalyses > 0 {
		s.AvgProcessingTimeSec = (o.totalProcessingTime / time.Duration(o.successfulAnalyses)).Seconds()
	}
	for k, v := range o.gradeCounts {
		s.GradeCounts[k] = v
	}
	for k, v := range o.strategyCounts {
		s.StrategyCounts[k] = v
	}
	return s
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
	pending   sync.WaitGroup
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event concurrently
func (p *EventPublisher) NotifyObservers(ctx context.Context, event AnalysisEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	// Observers outlive the request, so they must not inherit its cancellation
	ctx = context.WithoutCancel(ctx)

	for _, observer := range observers {
		p.pending.Add(1)
		go func(obs Observer) {
			defer p.pending.Done()
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}

// Wait blocks until every notification delivered so far has been handled
func (p *EventPublisher) Wait() {
	p.pending.Wait()
}
