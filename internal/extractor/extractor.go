// Package extractor resolves validated platform URLs into retrievable
// media descriptors. Extractors never write to persistent storage; they
// only resolve source locations and sizes.
package extractor

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/iconidentify/sharegrab/internal/config"
	"github.com/iconidentify/sharegrab/internal/domain"
	"github.com/iconidentify/sharegrab/internal/fetch"
)

// Extractor resolves a canonical URL into media descriptors.
type Extractor interface {
	// Extract returns one descriptor per retrievable item, in post order.
	// Content requiring authenticated access yields ErrPrivateContent,
	// never a silent empty result.
	Extract(ctx context.Context, canonicalURL string) ([]domain.MediaDescriptor, error)

	// Platform identifies which platform this extractor handles.
	Platform() domain.PlatformKind
}

// Registry dispatches extraction over the closed set of platforms and
// applies the single-retry policy for the transient failure class.
type Registry struct {
	extractors map[domain.PlatformKind]Extractor
	retry      fetch.RetryConfig
}

// NewRegistry builds the platform extractor set.
func NewRegistry(cfg config.ExtractConfig, prober fetch.Fetcher) *Registry {
	client := &http.Client{Timeout: cfg.Timeout}

	exts := []Extractor{
		NewInstagram(cfg, client),
		NewYouTube(cfg, client),
		NewTikTok(cfg, client, prober),
		NewFacebook(cfg, client, prober),
	}

	byPlatform := make(map[domain.PlatformKind]Extractor, len(exts))
	for _, e := range exts {
		byPlatform[e.Platform()] = e
	}

	return &Registry{
		extractors: byPlatform,
		retry:      fetch.SingleRetryConfig(cfg.RetryDelay),
	}
}

// Extract resolves media for a classified URL. Transient failures are
// retried at most once with a short backoff; non-retryable failures
// surface immediately.
func (r *Registry) Extract(ctx context.Context, platform domain.PlatformKind, canonicalURL string) ([]domain.MediaDescriptor, error) {
	ext, ok := r.extractors[platform]
	if !ok {
		return nil, domain.ErrUnsupportedPlatform
	}

	return fetch.RetryWithCheck(ctx, r.retry, func() ([]domain.MediaDescriptor, error) {
		return ext.Extract(ctx, canonicalURL)
	}, domain.Retryable)
}

// getBody issues a GET and maps transport-level statuses onto domain
// errors shared by all platform extractors.
func getBody(ctx context.Context, client *http.Client, url, userAgent string, header map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if err := mapStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

func mapStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return domain.ErrPrivateContent
	case code == http.StatusNotFound || code == http.StatusGone:
		return domain.ErrContentRemoved
	case code == http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case code >= 500:
		// Transient by default; the retry classifier treats unwrapped
		// transport errors as retryable.
		return fmt.Errorf("upstream status %d", code)
	default:
		return fmt.Errorf("unexpected status %d: %w", code, domain.ErrExtraction)
	}
}

// probeSize asks the fetcher for an item's Content-Length when the
// platform response carries no size. Returns 0 when unknown; the actual
// downloaded size remains the authority either way.
func probeSize(ctx context.Context, prober fetch.Fetcher, url string) int64 {
	if prober == nil {
		return 0
	}
	res, err := prober.Probe(ctx, url)
	if err != nil || res == nil || !res.Accessible || res.ContentLength < 0 {
		return 0
	}
	return res.ContentLength
}
