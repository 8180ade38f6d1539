package repository

import (
	"context"
	"image"
)

// ImageRepository defines the interface for image data access operations
type ImageRepository interface {
	// FetchImage retrieves and decodes an image from a URL
	FetchImage(ctx context.Context, imageURL string) (image.Image, error)

	// ValidateImageURL validates if the provided URL is acceptable
	ValidateImageURL(imageURL string) error

	// GetImageMetadata reports dimensions and format of a fetched image
	GetImageMetadata(ctx context.Context, imageURL string) (*ImageMetadata, error)
}

// URLValidator is satisfied by validation.URLValidator
type URLValidator interface {
	ValidateImageURL(imageURL string) error
}

// ImageMetadata contains metadata about an image
type ImageMetadata struct {
	Source     string `json:"source"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	ColorModel string `json:"color_model"`
}
