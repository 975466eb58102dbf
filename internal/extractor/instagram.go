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
)

var (
	instagramShortcodeRe = regexp.MustCompile(`/(p|reel|tv)/([A-Za-z0-9_-]+)/`)
	instagramStoryPathRe = regexp.MustCompile(`/stories/([A-Za-z0-9_.]+)/(\d+)/`)
)

// Instagram extracts posts, carousels, reels and stories via the web
// profile JSON endpoint.
type Instagram struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewInstagram creates the Instagram extractor.
func NewInstagram(cfg config.ExtractConfig, client *http.Client) *Instagram {
	return &Instagram{
		baseURL:   strings.TrimSuffix(cfg.InstagramBaseURL, "/"),
		userAgent: cfg.UserAgent,
		client:    client,
	}
}

// Platform identifies this extractor.
func (e *Instagram) Platform() domain.PlatformKind {
	return domain.PlatformInstagram
}

// instagramMedia is the shortcode media shape of the web JSON endpoint.
type instagramMedia struct {
	IsVideo    bool   `json:"is_video"`
	VideoURL   string `json:"video_url"`
	DisplayURL string `json:"display_url"`
	Dimensions struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"dimensions"`
	VideoDuration float64 `json:"video_duration"`
	FileSize      int64   `json:"file_size"`
	EdgeSidecar   struct {
		Edges []struct {
			Node instagramMedia `json:"node"`
		} `json:"edges"`
	} `json:"edge_sidecar_to_children"`
	EdgeCaption struct {
		Edges []struct {
			Node struct {
				Text string `json:"text"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"edge_media_to_caption"`
}

type instagramResponse struct {
	GraphQL struct {
		ShortcodeMedia *instagramMedia `json:"shortcode_media"`
	} `json:"graphql"`
	ReelsMedia []struct {
		Items []instagramStoryItem `json:"items"`
	} `json:"reels_media"`
	RequireLogin bool `json:"require_login"`
}

type instagramStoryItem struct {
	IsVideo       bool `json:"is_video"`
	VideoVersions []struct {
		URL string `json:"url"`
	} `json:"video_versions"`
	ImageVersions struct {
		Candidates []struct {
			URL string `json:"url"`
		} `json:"candidates"`
	} `json:"image_versions2"`
}

// Extract resolves an Instagram URL. Single posts, multi-image carousels,
// reels and stories each produce one descriptor per item.
func (e *Instagram) Extract(ctx context.Context, canonicalURL string) ([]domain.MediaDescriptor, error) {
	if instagramStoryPathRe.MatchString(canonicalURL) {
		return e.extractStory(ctx, canonicalURL)
	}

	m := instagramShortcodeRe.FindStringSubmatch(canonicalURL)
	if m == nil {
		return nil, fmt.Errorf("no shortcode in %q: %w", canonicalURL, domain.ErrExtraction)
	}

	endpoint := fmt.Sprintf("%s/%s/%s/?__a=1&__d=dis", e.baseURL, m[1], m[2])
	body, err := getBody(ctx, e.client, endpoint, e.userAgent, nil)
	if err != nil {
		return nil, err
	}

	var resp instagramResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", domain.ErrExtraction)
	}
	if resp.RequireLogin {
		return nil, domain.ErrPrivateContent
	}

	media := resp.GraphQL.ShortcodeMedia
	if media == nil {
		return nil, domain.ErrNoMedia
	}

	caption := ""
	if len(media.EdgeCaption.Edges) > 0 {
		caption = media.EdgeCaption.Edges[0].Node.Text
	}

	// Carousel: one descriptor per child, preserving post order.
	if len(media.EdgeSidecar.Edges) > 0 {
		descriptors := make([]domain.MediaDescriptor, 0, len(media.EdgeSidecar.Edges))
		for i, edge := range media.EdgeSidecar.Edges {
			d := descriptorFor(edge.Node, caption, i)
			if d.SourceURL == "" {
				continue
			}
			descriptors = append(descriptors, d)
		}
		if len(descriptors) == 0 {
			return nil, domain.ErrNoMedia
		}
		return descriptors, nil
	}

	d := descriptorFor(*media, caption, 0)
	if d.SourceURL == "" {
		return nil, domain.ErrNoMedia
	}
	return []domain.MediaDescriptor{d}, nil
}

func (e *Instagram) extractStory(ctx context.Context, canonicalURL string) ([]domain.MediaDescriptor, error) {
	m := instagramStoryPathRe.FindStringSubmatch(canonicalURL)
	if m == nil {
		return nil, fmt.Errorf("malformed story URL %q: %w", canonicalURL, domain.ErrExtraction)
	}

	endpoint := fmt.Sprintf("%s/stories/%s/%s/?__a=1&__d=dis", e.baseURL, m[1], m[2])
	body, err := getBody(ctx, e.client, endpoint, e.userAgent, nil)
	if err != nil {
		return nil, err
	}

	var resp instagramResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse story response: %w", domain.ErrExtraction)
	}
	if resp.RequireLogin {
		return nil, domain.ErrPrivateContent
	}
	if len(resp.ReelsMedia) == 0 {
		return nil, domain.ErrNoMedia
	}

	var descriptors []domain.MediaDescriptor
	for _, reel := range resp.ReelsMedia {
		for _, item := range reel.Items {
			src := ""
			if item.IsVideo && len(item.VideoVersions) > 0 {
				src = item.VideoVersions[0].URL
			} else if len(item.ImageVersions.Candidates) > 0 {
				src = item.ImageVersions.Candidates[0].URL
			}
			if src == "" {
				continue
			}
			descriptors = append(descriptors, domain.MediaDescriptor{
				Kind:      domain.MediaStoryFrame,
				SourceURL: src,
				Index:     len(descriptors),
			})
		}
	}
	if len(descriptors) == 0 {
		return nil, domain.ErrNoMedia
	}
	return descriptors, nil
}

func descriptorFor(m instagramMedia, caption string, index int) domain.MediaDescriptor {
	d := domain.MediaDescriptor{
		Caption:       caption,
		EstimatedSize: m.FileSize,
		Index:         index,
	}
	if m.IsVideo {
		d.Kind = domain.MediaVideo
		d.SourceURL = m.VideoURL
	} else {
		d.Kind = domain.MediaImage
		d.SourceURL = m.DisplayURL
	}
	return d
}
