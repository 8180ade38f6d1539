package factory

import (
	"errors"
	"fmt"

	"go-tearfilm-inspector/internal/config"
	"go-tearfilm-inspector/internal/storage"
)

// ErrStorageNotConfigured indicates a backend whose credentials are missing
var ErrStorageNotConfigured = errors.New("storage backend not configured")

// StorageType represents different types of storage backends
type StorageType string

const (
	// HTTPStorage for HTTP-based image fetching
	HTTPStorage StorageType = "http"
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = "azure"
)

// StorageFactory creates storage implementations
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.ImageFetcher, error)
}

type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a storage factory driven by the service configuration
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateStorage creates a storage implementation based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.ImageFetcher, error) {
	switch storageType {
	case HTTPStorage:
		opts := storage.DefaultHTTPFetcherOptions()
		opts.Timeout = f.cfg.ImageFetchTimeout
		opts.Retries = f.cfg.FetchRetries
		opts.Backoff = f.cfg.FetchRetryBackoff
		opts.MaxBytes = f.cfg.MaxRequestBodySize
		opts.MaxPixels = f.cfg.MaxImagePixels
		return storage.NewHTTPImageFetcher(opts), nil
	case AzureStorage:
		if !f.cfg.AzureEnabled() {
			return nil, fmt.Errorf("%w: %s", ErrStorageNotConfigured, storageType)
		}
		fetcher, err := storage.NewAzureBlobFetcher(f.cfg.AzureStorageAccount, f.cfg.AzureStorageKey, storage.DecodeLimits{
			MaxBytes:  f.cfg.MaxRequestBodySize,
			MaxPixels: f.cfg.MaxImagePixels,
		})
		if err != nil {
			return nil, err
		}
		return fetcher, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}
