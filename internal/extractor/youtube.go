package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/iconidentify/sharegrab/internal/config"
	"github.com/iconidentify/sharegrab/internal/domain"
)

var youtubeShortsPathRe = regexp.MustCompile(`/shorts/([A-Za-z0-9_-]+)`)

// YouTube extracts full videos and shorts via the innertube player
// endpoint. Both URL shapes always classify as video kind.
type YouTube struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewYouTube creates the YouTube extractor.
func NewYouTube(cfg config.ExtractConfig, client *http.Client) *YouTube {
	return &YouTube{
		baseURL:   strings.TrimSuffix(cfg.YouTubeBaseURL, "/"),
		userAgent: cfg.UserAgent,
		client:    client,
	}
}

// Platform identifies this extractor.
func (e *YouTube) Platform() domain.PlatformKind {
	return domain.PlatformYouTube
}

type playerRequest struct {
	VideoID string `json:"videoId"`
	Context struct {
		Client struct {
			ClientName    string `json:"clientName"`
			ClientVersion string `json:"clientVersion"`
		} `json:"client"`
	} `json:"context"`
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	StreamingData struct {
		Formats []youtubeFormat `json:"formats"`
	} `json:"streamingData"`
	VideoDetails struct {
		Title     string `json:"title"`
		IsPrivate bool   `json:"isPrivate"`
	} `json:"videoDetails"`
}

type youtubeFormat struct {
	URL           string `json:"url"`
	MimeType      string `json:"mimeType"`
	Bitrate       int    `json:"bitrate"`
	ContentLength string `json:"contentLength"`
}

// Extract resolves the best progressive format for a watch or shorts URL.
func (e *YouTube) Extract(ctx context.Context, canonicalURL string) ([]domain.MediaDescriptor, error) {
	videoID, err := youtubeVideoID(canonicalURL)
	if err != nil {
		return nil, err
	}

	reqBody := playerRequest{VideoID: videoID}
	reqBody.Context.Client.ClientName = "ANDROID"
	reqBody.Context.Client.ClientVersion = "19.09.37"

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal player request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/youtubei/v1/player", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
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

	var player playerResponse
	if err := json.Unmarshal(body, &player); err != nil {
		return nil, fmt.Errorf("parse player response: %w", domain.ErrExtraction)
	}

	switch player.PlayabilityStatus.Status {
	case "OK":
	case "LOGIN_REQUIRED":
		return nil, domain.ErrPrivateContent
	case "ERROR", "UNPLAYABLE":
		return nil, domain.ErrContentRemoved
	default:
		if player.VideoDetails.IsPrivate {
			return nil, domain.ErrPrivateContent
		}
		return nil, fmt.Errorf("playability %q: %w", player.PlayabilityStatus.Status, domain.ErrExtraction)
	}

	best := bestProgressiveFormat(player.StreamingData.Formats)
	if best == nil {
		return nil, domain.ErrNoMedia
	}

	size, _ := strconv.ParseInt(best.ContentLength, 10, 64)
	return []domain.MediaDescriptor{{
		Kind:          domain.MediaVideo,
		SourceURL:     best.URL,
		EstimatedSize: size,
		Caption:       player.VideoDetails.Title,
	}}, nil
}

// bestProgressiveFormat picks the highest-bitrate muxed format with a
// direct URL. Adaptive (audio-only/video-only) streams are not usable
// without remuxing, so only the progressive list is considered.
func bestProgressiveFormat(formats []youtubeFormat) *youtubeFormat {
	var best *youtubeFormat
	for i := range formats {
		f := &formats[i]
		if f.URL == "" || !strings.HasPrefix(f.MimeType, "video/") {
			continue
		}
		if best == nil || f.Bitrate > best.Bitrate {
			best = f
		}
	}
	return best
}

func youtubeVideoID(canonicalURL string) (string, error) {
	if m := youtubeShortsPathRe.FindStringSubmatch(canonicalURL); m != nil {
		return m[1], nil
	}
	u, err := url.Parse(canonicalURL)
	if err == nil {
		if id := u.Query().Get("v"); id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("no video id in %q: %w", canonicalURL, domain.ErrExtraction)
}
