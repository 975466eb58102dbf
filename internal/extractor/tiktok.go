package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/iconidentify/sharegrab/internal/config"
	"github.com/iconidentify/sharegrab/internal/domain"
	"github.com/iconidentify/sharegrab/internal/fetch"
)

var (
	tiktokPlayAddrRe = regexp.MustCompile(`"playAddr"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	tiktokDescRe     = regexp.MustCompile(`"desc"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	tiktokPrivateRe  = regexp.MustCompile(`"privateItem"\s*:\s*true`)
	tiktokStatusRe   = regexp.MustCompile(`"statusCode"\s*:\s*(\d+)`)
)

// TikTok extracts videos by scraping the embedded page state. TikTok is
// video-only; any non-video content on the page is ignored.
type TikTok struct {
	baseURL   string
	userAgent string
	client    *http.Client
	prober    fetch.Fetcher
}

// NewTikTok creates the TikTok extractor.
func NewTikTok(cfg config.ExtractConfig, client *http.Client, prober fetch.Fetcher) *TikTok {
	return &TikTok{
		baseURL:   strings.TrimSuffix(cfg.TikTokBaseURL, "/"),
		userAgent: cfg.UserAgent,
		client:    client,
		prober:    prober,
	}
}

// Platform identifies this extractor.
func (e *TikTok) Platform() domain.PlatformKind {
	return domain.PlatformTikTok
}

// Extract resolves the direct play address from a TikTok video page.
// Short links (vm.tiktok.com) resolve through the client's redirect
// following before the page is parsed.
func (e *TikTok) Extract(ctx context.Context, canonicalURL string) ([]domain.MediaDescriptor, error) {
	pageURL := canonicalURL
	if strings.HasPrefix(canonicalURL, "https://www.tiktok.com/") {
		pageURL = e.baseURL + strings.TrimPrefix(canonicalURL, "https://www.tiktok.com")
	}

	body, err := getBody(ctx, e.client, pageURL, e.userAgent, nil)
	if err != nil {
		return nil, err
	}
	page := string(body)

	if tiktokPrivateRe.MatchString(page) {
		return nil, domain.ErrPrivateContent
	}
	if m := tiktokStatusRe.FindStringSubmatch(page); m != nil && m[1] != "0" {
		return nil, domain.ErrContentRemoved
	}

	m := tiktokPlayAddrRe.FindStringSubmatch(page)
	if m == nil {
		return nil, domain.ErrNoMedia
	}
	src, err := unescapeJSONString(m[1])
	if err != nil || src == "" {
		return nil, fmt.Errorf("bad play address: %w", domain.ErrExtraction)
	}

	caption := ""
	if dm := tiktokDescRe.FindStringSubmatch(page); dm != nil {
		caption, _ = unescapeJSONString(dm[1])
	}

	return []domain.MediaDescriptor{{
		Kind:          domain.MediaVideo,
		SourceURL:     src,
		EstimatedSize: probeSize(ctx, e.prober, src),
		Caption:       caption,
	}}, nil
}

// unescapeJSONString decodes a JSON string literal body (the content
// between the quotes), handling \uXXXX and escaped slashes in page state.
func unescapeJSONString(s string) (string, error) {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return "", err
	}
	return out, nil
}
