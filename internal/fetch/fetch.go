// Package fetch transfers media bytes from resolved source URLs.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/iconidentify/sharegrab/internal/config"
	"github.com/iconidentify/sharegrab/internal/domain"
)

// Fetcher retrieves media content from URLs.
type Fetcher interface {
	// Fetch retrieves media from url, returning a content reader and the
	// reported size (-1 when unknown). Caller is responsible for closing
	// the reader.
	Fetch(ctx context.Context, url string) (io.ReadCloser, int64, error)

	// Probe checks URL accessibility and size without downloading content.
	Probe(ctx context.Context, url string) (*ProbeResult, error)
}

// ProbeResult contains information about a media URL.
type ProbeResult struct {
	ContentType   string
	ContentLength int64
	Accessible    bool
	Error         string
}

// HTTPFetcher implements Fetcher using HTTP requests.
type HTTPFetcher struct {
	// client is used for short requests (Probe) with an overall timeout
	client *http.Client
	// streamClient is used for streaming transfers without overall timeout
	streamClient *http.Client
	userAgent    string
	cfg          config.FetchConfig
	logger       *slog.Logger
}

// NewHTTPFetcher creates a new HTTP-based media fetcher.
func NewHTTPFetcher(cfg config.FetchConfig) *HTTPFetcher {
	streamTransport := &http.Transport{
		ResponseHeaderTimeout: cfg.ReadTimeout,
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		// No overall timeout on the stream client; stalls are detected
		// per-read instead.
		streamClient: &http.Client{
			Transport: streamTransport,
		},
		userAgent: cfg.UserAgent,
		cfg:       cfg,
		logger:    slog.Default(),
	}
}

// SetLogger sets the logger for transfer progress reporting.
func (f *HTTPFetcher) SetLogger(logger *slog.Logger) {
	f.logger = logger
}

// Fetch retrieves media from url. Transient failures are retried at most
// once after a short delay; policy errors surface immediately.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	var lastErr error

	const maxAttempts = 2
	for attempt := 0; attempt < maxAttempts; attempt++ {
		reader, size, err := f.fetchOnce(ctx, url)
		if err == nil {
			return reader, size, nil
		}

		lastErr = err

		if !domain.Retryable(err) {
			break
		}

		// Don't wait after the last attempt
		if attempt == maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		case <-time.After(f.cfg.RetryDelay):
		}
	}

	return nil, 0, fmt.Errorf("fetch failed: %w", lastErr)
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "video/mp4,video/*;q=0.9,image/*;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.streamClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("send request: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		resp.Body.Close()
		return nil, 0, domain.ErrPrivateContent
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		resp.Body.Close()
		return nil, 0, domain.ErrContentRemoved
	case resp.StatusCode == http.StatusTooManyRequests:
		resp.Body.Close()
		return nil, 0, domain.ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	size := resp.ContentLength
	if size < 0 {
		if cl := resp.Header.Get("Content-Length"); cl != "" {
			size, _ = strconv.ParseInt(cl, 10, 64)
		}
	}

	return newProgressReader(resp.Body, size, f.cfg.ReadTimeout, f.logger, url), size, nil
}

// Probe checks URL accessibility without downloading content.
func (f *HTTPFetcher) Probe(ctx context.Context, url string) (*ProbeResult, error) {
	req, err := http.NewRequestWithContext(ctx, "HEAD", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return &ProbeResult{
			Accessible: false,
			Error:      err.Error(),
		}, nil
	}
	defer resp.Body.Close()

	result := &ProbeResult{
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
		Accessible:    resp.StatusCode == http.StatusOK,
	}

	if !result.Accessible {
		result.Error = fmt.Sprintf("status code %d", resp.StatusCode)
	}

	return result, nil
}

// progressReader wraps an io.ReadCloser to track transfer progress
// and detect stalls (no data for readTimeout).
type progressReader struct {
	reader      io.ReadCloser
	total       int64
	downloaded  int64
	readTimeout time.Duration
	lastRead    time.Time
	lastLog     time.Time
	logger      *slog.Logger
	url         string
	mu          sync.Mutex
	closed      bool
}

func newProgressReader(r io.ReadCloser, total int64, readTimeout time.Duration, logger *slog.Logger, url string) *progressReader {
	now := time.Now()
	return &progressReader{
		reader:      r,
		total:       total,
		readTimeout: readTimeout,
		lastRead:    now,
		lastLog:     now,
		logger:      logger,
		url:         url,
	}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)

	p.mu.Lock()
	defer p.mu.Unlock()

	if n > 0 {
		p.downloaded += int64(n)
		p.lastRead = time.Now()

		if time.Since(p.lastLog) > 30*time.Second {
			p.logProgress()
			p.lastLog = time.Now()
		}
	}

	// Check for stall on any read (including zero-byte reads)
	if err == nil && p.readTimeout > 0 && time.Since(p.lastRead) > p.readTimeout {
		return n, fmt.Errorf("transfer stalled: no data received for %v", p.readTimeout)
	}

	return n, err
}

func (p *progressReader) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	return p.reader.Close()
}

func (p *progressReader) logProgress() {
	if p.total > 0 {
		pct := float64(p.downloaded) / float64(p.total) * 100
		p.logger.Info("transfer progress",
			"downloaded_mb", p.downloaded/(1024*1024),
			"total_mb", p.total/(1024*1024),
			"percent", fmt.Sprintf("%.1f%%", pct),
		)
	} else {
		p.logger.Info("transfer progress",
			"downloaded_mb", p.downloaded/(1024*1024),
		)
	}
}
