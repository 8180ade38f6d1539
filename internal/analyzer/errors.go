package analyzer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidImage marks input that cannot be read as a non-empty 3-channel image
	ErrInvalidImage = errors.New("invalid image")

	// ErrEmptyRegion marks a region of interest with no pixels left to measure
	ErrEmptyRegion = errors.New("empty region of interest")

	// ErrUnsupportedStrategy marks a classifier strategy the analyzer does not provide
	ErrUnsupportedStrategy = errors.New("unsupported strategy")

	// ErrDimensionMismatch marks a mask whose size differs from its image or ROI
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// InvalidImageError describes why an image was rejected.
// ChannelLayout is set when the image decoded fine but does not carry RGB data.
type InvalidImageError struct {
	Reason        string
	ChannelLayout bool
}

func (e *InvalidImageError) Error() string {
	return fmt.Sprintf("invalid image: %s", e.Reason)
}

func (e *InvalidImageError) Is(target error) bool {
	return target == ErrInvalidImage
}

// EmptyRegionError reports how many pixels were excluded before the ROI became empty
type EmptyRegionError struct {
	Total    int
	Excluded int
}

func (e *EmptyRegionError) Error() string {
	return fmt.Sprintf("empty region of interest: %d of %d pixels excluded", e.Excluded, e.Total)
}

func (e *EmptyRegionError) Is(target error) bool {
	return target == ErrEmptyRegion
}

// UnsupportedStrategyError names the strategy that could not be resolved
type UnsupportedStrategyError struct {
	Strategy Strategy
}

func (e *UnsupportedStrategyError) Error() string {
	return fmt.Sprintf("unsupported strategy: %q", string(e.Strategy))
}

func (e *UnsupportedStrategyError) Is(target error) bool {
	return target == ErrUnsupportedStrategy
}

// isChannelLayoutError reports whether err is an InvalidImageError caused by channel layout
func isChannelLayoutError(err error) bool {
	var invalid *InvalidImageError
	return errors.As(err, &invalid) && invalid.ChannelLayout
}
