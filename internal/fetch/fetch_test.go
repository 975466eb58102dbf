package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iconidentify/sharegrab/internal/config"
	"github.com/iconidentify/sharegrab/internal/domain"
)

func testConfig() config.FetchConfig {
	return config.FetchConfig{
		Timeout:     10 * time.Second,
		ReadTimeout: 10 * time.Second,
		RetryDelay:  10 * time.Millisecond,
		UserAgent:   "test-agent",
	}
}

func TestFetch_Success(t *testing.T) {
	content := "fake media payload"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("User-Agent = %q, want %q", r.Header.Get("User-Agent"), "test-agent")
		}
		w.Write([]byte(content))
	}))
	defer server.Close()

	f := NewHTTPFetcher(testConfig())

	reader, size, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	defer reader.Close()

	if size != int64(len(content)) {
		t.Errorf("size = %d, want %d", size, len(content))
	}
	got, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(got) != content {
		t.Errorf("body = %q, want %q", got, content)
	}
}

func TestFetch_PrivateContentNoRetry(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	f := NewHTTPFetcher(testConfig())

	_, _, err := f.Fetch(context.Background(), server.URL)
	if !errors.Is(err, domain.ErrPrivateContent) {
		t.Fatalf("Fetch() error = %v, want ErrPrivateContent", err)
	}
	if n := attempts.Load(); n != 1 {
		t.Errorf("attempts = %d, want 1 (policy errors never retry)", n)
	}
}

func TestFetch_RemovedContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewHTTPFetcher(testConfig())

	_, _, err := f.Fetch(context.Background(), server.URL)
	if !errors.Is(err, domain.ErrContentRemoved) {
		t.Errorf("Fetch() error = %v, want ErrContentRemoved", err)
	}
}

func TestFetch_RetriesTransientOnce(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := NewHTTPFetcher(testConfig())

	reader, _, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	reader.Close()

	if n := attempts.Load(); n != 2 {
		t.Errorf("attempts = %d, want 2", n)
	}
}

func TestFetch_GivesUpAfterOneRetry(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	f := NewHTTPFetcher(testConfig())

	_, _, err := f.Fetch(context.Background(), server.URL)
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("Fetch() error = %v, want ErrRateLimited", err)
	}
	if n := attempts.Load(); n != 2 {
		t.Errorf("attempts = %d, want exactly 2", n)
	}
}

func TestFetch_NoDelayAfterFinalAttempt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.RetryDelay = 300 * time.Millisecond
	f := NewHTTPFetcher(cfg)

	start := time.Now()
	_, _, err := f.Fetch(context.Background(), server.URL)
	elapsed := time.Since(start)

	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("Fetch() error = %v, want ErrRateLimited", err)
	}
	// One inter-attempt delay only; a second one would mean a pointless
	// wait after the final attempt.
	if elapsed >= 2*cfg.RetryDelay {
		t.Errorf("Fetch() took %v, want under %v (no sleep after the last attempt)", elapsed, 2*cfg.RetryDelay)
	}
}

func TestProbe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "HEAD" {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		w.Header().Set("Content-Type", "video/mp4")
		w.Header().Set("Content-Length", "1024")
	}))
	defer server.Close()

	f := NewHTTPFetcher(testConfig())

	result, err := f.Probe(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if !result.Accessible {
		t.Error("Accessible = false, want true")
	}
	if result.ContentType != "video/mp4" {
		t.Errorf("ContentType = %q, want video/mp4", result.ContentType)
	}
	if result.ContentLength != 1024 {
		t.Errorf("ContentLength = %d, want 1024", result.ContentLength)
	}
}

func TestProbe_UnreachableIsNotAnError(t *testing.T) {
	f := NewHTTPFetcher(testConfig())

	result, err := f.Probe(context.Background(), "http://127.0.0.1:1/nope")
	if err != nil {
		t.Fatalf("Probe() error = %v, want nil with Accessible=false", err)
	}
	if result.Accessible {
		t.Error("Accessible = true, want false")
	}
}
