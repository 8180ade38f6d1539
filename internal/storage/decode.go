package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrNotFound indicates the remote image does not exist
	ErrNotFound = errors.New("image not found")

	// ErrImageTooLarge indicates the payload exceeded the configured byte or pixel limit
	ErrImageTooLarge = errors.New("image exceeds size limit")

	// ErrUnexpectedContentType indicates the remote resource is not an image
	ErrUnexpectedContentType = errors.New("unexpected content type")

	// ErrDecode indicates the payload could not be decoded as an image
	ErrDecode = errors.New("failed to decode image")
)

// DecodeLimits bound what DecodeImage accepts; zero disables a limit
type DecodeLimits struct {
	MaxBytes  int64
	MaxPixels int64
}

// DecodeImage reads at most MaxBytes from r and decodes it with any registered
// format (JPEG, PNG, GIF, BMP, TIFF, WebP). The header is checked against
// MaxPixels before any pixel data is decoded.
func DecodeImage(r io.Reader, limits DecodeLimits) (image.Image, string, error) {
	maxBytes := limits.MaxBytes
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, "", fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, maxBytes)
	}

	if limits.MaxPixels > 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
		}
		if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > limits.MaxPixels {
			return nil, "", fmt.Errorf("%w: %dx%d is more than %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, limits.MaxPixels)
		}
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, format, nil
}

// acceptableContentType admits image/* and the generic types servers use for blobs
func acceptableContentType(header string) bool {
	if header == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/") ||
		mediaType == "application/octet-stream" ||
		mediaType == "binary/octet-stream"
}
