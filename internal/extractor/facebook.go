package extractor

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/iconidentify/sharegrab/internal/config"
	"github.com/iconidentify/sharegrab/internal/domain"
	"github.com/iconidentify/sharegrab/internal/fetch"
)

var (
	facebookHDRe    = regexp.MustCompile(`"playable_url_quality_hd"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	facebookSDRe    = regexp.MustCompile(`"playable_url"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	facebookTitleRe = regexp.MustCompile(`<title[^>]*>([^<]*)</title>`)
	facebookLoginRe = regexp.MustCompile(`/login/\?next=|login_form`)
)

// Facebook extracts videos from public watch pages. Facebook is
// video-only; non-video content on the page is ignored.
type Facebook struct {
	baseURL   string
	userAgent string
	client    *http.Client
	prober    fetch.Fetcher
}

// NewFacebook creates the Facebook extractor.
func NewFacebook(cfg config.ExtractConfig, client *http.Client, prober fetch.Fetcher) *Facebook {
	return &Facebook{
		baseURL:   strings.TrimSuffix(cfg.FacebookBaseURL, "/"),
		userAgent: cfg.UserAgent,
		client:    client,
		prober:    prober,
	}
}

// Platform identifies this extractor.
func (e *Facebook) Platform() domain.PlatformKind {
	return domain.PlatformFacebook
}

// Extract resolves the playable URL from a Facebook watch page, preferring
// the HD rendition when present.
func (e *Facebook) Extract(ctx context.Context, canonicalURL string) ([]domain.MediaDescriptor, error) {
	pageURL := canonicalURL
	if strings.HasPrefix(canonicalURL, "https://www.facebook.com/") {
		pageURL = e.baseURL + strings.TrimPrefix(canonicalURL, "https://www.facebook.com")
	}

	body, err := getBody(ctx, e.client, pageURL, e.userAgent, nil)
	if err != nil {
		return nil, err
	}
	page := string(body)

	if facebookLoginRe.MatchString(page) {
		return nil, domain.ErrPrivateContent
	}

	raw := ""
	if m := facebookHDRe.FindStringSubmatch(page); m != nil && m[1] != "" {
		raw = m[1]
	} else if m := facebookSDRe.FindStringSubmatch(page); m != nil && m[1] != "" {
		raw = m[1]
	}
	if raw == "" {
		return nil, domain.ErrNoMedia
	}

	src, err := unescapeJSONString(raw)
	if err != nil || src == "" {
		return nil, fmt.Errorf("bad playable url: %w", domain.ErrExtraction)
	}

	caption := ""
	if m := facebookTitleRe.FindStringSubmatch(page); m != nil {
		caption = strings.TrimSpace(m[1])
	}

	return []domain.MediaDescriptor{{
		Kind:          domain.MediaVideo,
		SourceURL:     src,
		EstimatedSize: probeSize(ctx, e.prober, src),
		Caption:       caption,
	}}, nil
}
