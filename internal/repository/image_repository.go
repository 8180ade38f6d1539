package repository

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"go-tearfilm-inspector/internal/storage"
)

const (
	SourceHTTP  = "http"
	SourceAzure = "azure"
)

// RoutingImageRepository sends Azure Blob URLs to the blob fetcher and
// everything else to the HTTP fetcher
type RoutingImageRepository struct {
	http      storage.ImageFetcher
	blob      storage.ImageFetcher // nil when Azure is not configured
	validator URLValidator
}

// NewImageRepository creates a repository; blob may be nil
func NewImageRepository(http, blob storage.ImageFetcher, validator URLValidator) *RoutingImageRepository {
	return &RoutingImageRepository{
		http:      http,
		blob:      blob,
		validator: validator,
	}
}

// FetchImage validates the URL and retrieves the image from the matching backend
func (r *RoutingImageRepository) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	if err := r.ValidateImageURL(imageURL); err != nil {
		return nil, err
	}
	fetcher, _, err := r.route(imageURL)
	if err != nil {
		return nil, err
	}
	return fetcher.FetchImage(ctx, imageURL)
}

// ValidateImageURL validates if the provided URL is acceptable
func (r *RoutingImageRepository) ValidateImageURL(imageURL string) error {
	if imageURL == "" {
		return ErrInvalidImageURL
	}
	if r.validator != nil {
		return r.validator.ValidateImageURL(imageURL)
	}
	return nil
}

// GetImageMetadata fetches the image and reports its geometry
func (r *RoutingImageRepository) GetImageMetadata(ctx context.Context, imageURL string) (*ImageMetadata, error) {
	_, source, err := r.route(imageURL)
	if err != nil {
		return nil, err
	}
	img, err := r.FetchImage(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &ImageMetadata{
		Source:     source,
		Width:      b.Dx(),
		Height:     b.Dy(),
		ColorModel: colorModelName(img.ColorModel()),
	}, nil
}

func (r *RoutingImageRepository) route(imageURL string) (storage.ImageFetcher, string, error) {
	if storage.IsBlobURL(imageURL) {
		if r.blob == nil {
			return nil, "", fmt.Errorf("%w: %s", ErrBlobStorageDisabled, imageURL)
		}
		return r.blob, SourceAzure, nil
	}
	return r.http, SourceHTTP, nil
}

func colorModelName(m color.Model) string {
	if _, ok := m.(color.Palette); ok {
		return "paletted"
	}
	switch m {
	case color.RGBAModel:
		return "rgba"
	case color.RGBA64Model:
		return "rgba64"
	case color.NRGBAModel:
		return "nrgba"
	case color.NRGBA64Model:
		return "nrgba64"
	case color.GrayModel:
		return "gray"
	case color.Gray16Model:
		return "gray16"
	case color.YCbCrModel:
		return "ycbcr"
	case color.CMYKModel:
		return "cmyk"
	}
	return "other"
}
