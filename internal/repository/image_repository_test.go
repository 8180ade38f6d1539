package repository

import (
	"context"
	"errors"
	"image"
	"testing"

	apperrors "go-tearfilm-inspector/internal/errors"
	"go-tearfilm-inspector/pkg/validation"
)

type stubFetcher struct {
	calls []string
	img   image.Image
	err   error
}

func (s *stubFetcher) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	s.calls = append(s.calls, imageURL)
	return s.img, s.err
}

func TestRoutingImageRepository_Routes(t *testing.T) {
	httpFetcher := &stubFetcher{img: image.NewRGBA(image.Rect(0, 0, 4, 3))}
	blobFetcher := &stubFetcher{img: image.NewGray(image.Rect(0, 0, 2, 2))}
	repo := NewImageRepository(httpFetcher, blobFetcher, validation.NewURLValidator())

	ctx := context.Background()
	if _, err := repo.FetchImage(ctx, "https://example.com/eye.png"); err != nil {
		t.Fatalf("FetchImage failed: %v", err)
	}
	if _, err := repo.FetchImage(ctx, "https://eyes.blob.core.windows.net/scans/eye.png"); err != nil {
		t.Fatalf("FetchImage failed: %v", err)
	}

	if len(httpFetcher.calls) != 1 || len(blobFetcher.calls) != 1 {
		t.Errorf("Expected one call per backend, got http=%v blob=%v", httpFetcher.calls, blobFetcher.calls)
	}
}

func TestRoutingImageRepository_BlobDisabled(t *testing.T) {
	repo := NewImageRepository(&stubFetcher{}, nil, nil)

	_, err := repo.FetchImage(context.Background(), "https://eyes.blob.core.windows.net/scans/eye.png")
	if !errors.Is(err, ErrBlobStorageDisabled) {
		t.Errorf("Expected ErrBlobStorageDisabled, got %v", err)
	}
}

func TestRoutingImageRepository_Validation(t *testing.T) {
	httpFetcher := &stubFetcher{}
	repo := NewImageRepository(httpFetcher, nil, validation.NewURLValidator())

	if err := repo.ValidateImageURL(""); !errors.Is(err, ErrInvalidImageURL) {
		t.Errorf("Expected ErrInvalidImageURL, got %v", err)
	}
	_, err := repo.FetchImage(context.Background(), "ftp://example.com/eye.png")
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected a validation error, got %v", err)
	}
	if len(httpFetcher.calls) != 0 {
		t.Error("Rejected URLs must not be fetched")
	}
}

func TestRoutingImageRepository_Metadata(t *testing.T) {
	repo := NewImageRepository(
		&stubFetcher{img: image.NewNRGBA(image.Rect(0, 0, 5, 7))},
		&stubFetcher{img: image.NewGray(image.Rect(0, 0, 2, 2))},
		nil,
	)

	meta, err := repo.GetImageMetadata(context.Background(), "https://example.com/eye.png")
	if err != nil {
		t.Fatalf("GetImageMetadata failed: %v", err)
	}
	if meta.Source != SourceHTTP || meta.Width != 5 || meta.Height != 7 || meta.ColorModel != "nrgba" {
		t.Errorf("Unexpected metadata %+v", meta)
	}

	meta, err = repo.GetImageMetadata(context.Background(), "https://eyes.blob.core.windows.net/c/eye.png")
	if err != nil {
		t.Fatalf("GetImageMetadata failed: %v", err)
	}
	if meta.Source != SourceAzure || meta.ColorModel != "gray" {
		t.Errorf("Unexpected metadata %+v", meta)
	}

	fetchErr := errors.New("boom")
	failing := NewImageRepository(&stubFetcher{err: fetchErr}, nil, nil)
	if _, err := failing.GetImageMetadata(context.Background(), "https://example.com/eye.png"); !errors.Is(err, fetchErr) {
		t.Errorf("Expected fetch error to propagate, got %v", err)
	}
}
