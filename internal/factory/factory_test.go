package factory

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"go-tearfilm-inspector/internal/config"
	"go-tearfilm-inspector/internal/storage"
)

func testConfig() *config.Config {
	return &config.Config{
		ImageFetchTimeout:  time.Second,
		FetchRetries:       1,
		FetchRetryBackoff:  time.Millisecond,
		MaxRequestBodySize: 1024,
	}
}

func TestCreateStorage_HTTP(t *testing.T) {
	fetcher, err := NewStorageFactory(testConfig()).CreateStorage(HTTPStorage)
	if err != nil {
		t.Fatalf("CreateStorage failed: %v", err)
	}
	if _, ok := fetcher.(*storage.HTTPImageFetcher); !ok {
		t.Errorf("Expected *storage.HTTPImageFetcher, got %T", fetcher)
	}
}

func TestCreateStorage_Azure(t *testing.T) {
	cfg := testConfig()
	if _, err := NewStorageFactory(cfg).CreateStorage(AzureStorage); !errors.Is(err, ErrStorageNotConfigured) {
		t.Errorf("Expected ErrStorageNotConfigured, got %v", err)
	}

	cfg.AzureStorageAccount = "eyes"
	cfg.AzureStorageKey = base64.StdEncoding.EncodeToString([]byte("key"))
	fetcher, err := NewStorageFactory(cfg).CreateStorage(AzureStorage)
	if err != nil {
		t.Fatalf("CreateStorage failed: %v", err)
	}
	if _, ok := fetcher.(*storage.AzureBlobFetcher); !ok {
		t.Errorf("Expected *storage.AzureBlobFetcher, got %T", fetcher)
	}
}

func TestCreateStorage_Unsupported(t *testing.T) {
	if _, err := NewStorageFactory(testConfig()).CreateStorage("local"); err == nil {
		t.Error("Expected an error for an unsupported storage type")
	}
}
