package storage

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"time"
)

type ImageFetcher interface {
	FetchImage(ctx context.Context, imageURL string) (image.Image, error)
}

// HTTPFetcherOptions tunes the HTTP fetcher
type HTTPFetcherOptions struct {
	Timeout   time.Duration
	Retries   int           // extra attempts after the first, for 5xx and network errors
	Backoff   time.Duration // attempt n waits n*Backoff before retrying
	MaxBytes  int64
	MaxPixels int64
	UserAgent string
}

// DefaultHTTPFetcherOptions returns the settings used when nothing is configured
func DefaultHTTPFetcherOptions() HTTPFetcherOptions {
	return HTTPFetcherOptions{
		Timeout:   30 * time.Second,
		Retries:   2,
		Backoff:   time.Second,
		MaxBytes:  10 * 1024 * 1024,
		MaxPixels: 40_000_000,
		UserAgent: "Go-Tearfilm-Inspector/1.0",
	}
}

// HTTPImageFetcher implements ImageFetcher over plain HTTP(S)
type HTTPImageFetcher struct {
	client *http.Client
	opts   HTTPFetcherOptions
}

// NewHTTPImageFetcher creates an HTTP image fetcher
func NewHTTPImageFetcher(opts HTTPFetcherOptions) *HTTPImageFetcher {
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultHTTPFetcherOptions().UserAgent
	}

	// Connection pool sized for single image downloads
	transport := &http.Transport{
		Proxy:                  http.ProxyFromEnvironment,
		MaxIdleConns:           10,
		MaxIdleConnsPerHost:    2,
		IdleConnTimeout:        30 * time.Second,
		TLSHandshakeTimeout:    10 * time.Second,
		ResponseHeaderTimeout:  10 * time.Second,
		ExpectContinueTimeout:  1 * time.Second,
		MaxResponseHeaderBytes: 4096,
	}

	return &HTTPImageFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		opts: opts,
	}
}

func (h *HTTPImageFetcher) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/bmp, image/tiff, */*")
	req.Header.Set("User-Agent", h.opts.UserAgent)

	attempts := h.opts.Retries + 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, time.Duration(attempt)*h.opts.Backoff); err != nil {
				return nil, fmt.Errorf("fetch cancelled: %w", err)
			}
		}

		img, retryable, err := h.fetchOnce(req)
		if err == nil {
			return img, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			break
		}
	}

	return nil, fmt.Errorf("failed to fetch image after %d attempts: %w", attempts, lastErr)
}

// fetchOnce performs one request; 5xx and transport errors are retryable
func (h *HTTPImageFetcher) fetchOnce(req *http.Request) (image.Image, bool, error) {
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, fmt.Errorf("%w: client error: status code %d", ErrNotFound, resp.StatusCode)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, false, fmt.Errorf("client error: status code %d", resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("server error: status code %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); !acceptableContentType(ct) {
		return nil, false, fmt.Errorf("%w: %s", ErrUnexpectedContentType, ct)
	}
	if h.opts.MaxBytes > 0 && resp.ContentLength > h.opts.MaxBytes {
		return nil, false, fmt.Errorf("%w: content length %d", ErrImageTooLarge, resp.ContentLength)
	}

	img, _, err := DecodeImage(resp.Body, DecodeLimits{MaxBytes: h.opts.MaxBytes, MaxPixels: h.opts.MaxPixels})
	if err != nil {
		return nil, false, err
	}
	return img, false, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
