package storage

import (
	"encoding/base64"
	"errors"
	"testing"
)

func TestIsBlobURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://eyes.blob.core.windows.net/scans/a.png", true},
		{"https://EYES.BLOB.CORE.WINDOWS.NET/scans/a.png", true},
		{"https://example.com/scans/a.png", false},
		{"https://blob.core.windows.net.evil.com/a.png", false},
		{"::not a url", false},
	}

	for _, tt := range tests {
		if got := IsBlobURL(tt.url); got != tt.want {
			t.Errorf("IsBlobURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestBlobLocation(t *testing.T) {
	container, blob, err := blobLocation("https://eyes.blob.core.windows.net/scans/2024/left/a.png", "eyes")
	if err != nil {
		t.Fatalf("blobLocation failed: %v", err)
	}
	if container != "scans" || blob != "2024/left/a.png" {
		t.Errorf("Expected scans / 2024/left/a.png, got %s / %s", container, blob)
	}

	if _, _, err := blobLocation("https://other.blob.core.windows.net/scans/a.png", "eyes"); !errors.Is(err, ErrForeignAccount) {
		t.Errorf("Expected ErrForeignAccount, got %v", err)
	}
	if _, _, err := blobLocation("https://eyes.blob.core.windows.net/scans", "eyes"); err == nil {
		t.Error("Expected an error for a URL without a blob name")
	}
	if _, _, err := blobLocation("https://example.com/scans/a.png", "eyes"); err == nil {
		t.Error("Expected an error for a non-blob URL")
	}
}

func TestNewAzureBlobFetcher(t *testing.T) {
	if _, err := NewAzureBlobFetcher("eyes", "%%% not base64 %%%", DecodeLimits{}); err == nil {
		t.Error("Expected an invalid key to be rejected")
	}

	key := base64.StdEncoding.EncodeToString([]byte("shared-key"))
	f, err := NewAzureBlobFetcher("Eyes", key, DecodeLimits{MaxBytes: 1024})
	if err != nil {
		t.Fatalf("NewAzureBlobFetcher failed: %v", err)
	}
	if f.Account() != "eyes" {
		t.Errorf("Expected normalized account name, got %s", f.Account())
	}
}
