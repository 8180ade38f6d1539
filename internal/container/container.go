package container

import (
	"errors"
	"fmt"
	"net/http"

	"go-tearfilm-inspector/internal/analyzer"
	"go-tearfilm-inspector/internal/config"
	"go-tearfilm-inspector/internal/factory"
	"go-tearfilm-inspector/internal/logger"
	"go-tearfilm-inspector/internal/observer"
	"go-tearfilm-inspector/internal/repository"
	"go-tearfilm-inspector/internal/service"
	"go-tearfilm-inspector/internal/storage"
	"go-tearfilm-inspector/internal/strategy"
	"go-tearfilm-inspector/internal/transport"
	"go-tearfilm-inspector/pkg/validation"

	"github.com/sirupsen/logrus"
)

// Container holds all application dependencies
type Container struct {
	config               *config.Config
	imageAnalyzer        analyzer.ImageAnalyzer
	imageRepository      repository.ImageRepository
	presets              *strategy.Registry
	events               *observer.EventPublisher
	metrics              *observer.MetricsObserver
	imageAnalysisService service.ImageAnalysisService
	handler              http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	presets := strategy.NewRegistry()
	if cfg.PresetsFile != "" {
		n, err := presets.LoadFile(cfg.PresetsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load presets: %w", err)
		}
		logger.WithFields(logrus.Fields{
			"file":    cfg.PresetsFile,
			"presets": n,
		}).Info("Loaded analysis presets")
	}

	// Build dependency graph
	storageFactory := factory.NewStorageFactory(cfg)
	httpFetcher, err := storageFactory.CreateStorage(factory.HTTPStorage)
	if err != nil {
		return nil, err
	}
	var blobFetcher storage.ImageFetcher
	if cfg.AzureEnabled() {
		blobFetcher, err = storageFactory.CreateStorage(factory.AzureStorage)
		if err != nil {
			return nil, fmt.Errorf("failed to create blob storage: %w", err)
		}
		logger.WithField("account", cfg.AzureStorageAccount).Info("Azure Blob image fetching enabled")
	}

	urlValidator := validation.NewURLValidatorWithOptions([]string{"http", "https"}, cfg.AllowedImageHosts)
	imageRepository := repository.NewImageRepository(httpFetcher, blobFetcher, urlValidator)

	imageAnalyzer, err := analyzer.NewImageAnalyzer(cfg.MaxWorkers)
	if err != nil {
		return nil, err
	}

	events := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	imageAnalysisService := service.NewImageAnalysisService(imageRepository, imageAnalyzer, presets, events, cfg.AnalysisTimeout)
	handler := transport.NewHandler(imageAnalysisService, metrics, cfg)

	return &Container{
		config:               cfg,
		imageAnalyzer:        imageAnalyzer,
		imageRepository:      imageRepository,
		presets:              presets,
		events:               events,
		metrics:              metrics,
		imageAnalysisService: imageAnalysisService,
		handler:              handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close drains pending events and stops the analyzer worker pool
func (c *Container) Close() error {
	c.events.Wait()
	return c.imageAnalyzer.Close()
}
