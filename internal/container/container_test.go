package container

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go-tearfilm-inspector/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Host:               "127.0.0.1",
		Port:               "8080",
		RequestTimeout:     5 * time.Second,
		ImageFetchTimeout:  2 * time.Second,
		AnalysisTimeout:    2 * time.Second,
		MaxRequestBodySize: 1 << 20,
		MaxWorkers:         1,
		MaxBatchSize:       4,
	}
}

func TestNewContainer(t *testing.T) {
	c, err := NewContainer(testConfig())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer c.Close()

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 from /health, got %d", w.Code)
	}
	if c.Config().MaxWorkers != 1 {
		t.Errorf("Expected config to be retained")
	}
}

func TestNewContainer_PresetsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	data := `presets:
  - name: lab-green
    description: Green channel dominance
    options:
      strategy: channel-ratio
      ratio: green
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.PresetsFile = path
	c, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer c.Close()

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/presets", nil))
	if !strings.Contains(w.Body.String(), "lab-green") {
		t.Errorf("Expected loaded preset in listing, got %s", w.Body.String())
	}
}

func TestNewContainer_Errors(t *testing.T) {
	if _, err := NewContainer(nil); err == nil {
		t.Error("Expected error for nil config")
	}

	cfg := testConfig()
	cfg.PresetsFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := NewContainer(cfg); err == nil {
		t.Error("Expected error for missing presets file")
	}
}
