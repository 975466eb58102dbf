// Package gemini is a minimal client for the Gemini text generation API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/iconidentify/sharegrab/internal/config"
	"github.com/iconidentify/sharegrab/internal/domain"
)

// Client generates social media copy from a topic.
type Client interface {
	// GenerateCaption creates a short, catchy caption for a topic.
	GenerateCaption(ctx context.Context, topic string) (string, error)
	// GenerateHashtags suggests count hashtags for a topic.
	GenerateHashtags(ctx context.Context, topic string, count int) ([]string, error)
}

// HTTPClient implements Client using HTTP requests to the Gemini API.
type HTTPClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient creates a new Gemini API client.
func NewClient(cfg config.GeminiConfig) *HTTPClient {
	return &HTTPClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// generateRequest is the request body for the generateContent endpoint.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// generateResponse is the response from the generateContent endpoint.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// GenerateCaption creates a short, catchy caption for a topic.
func (c *HTTPClient) GenerateCaption(ctx context.Context, topic string) (string, error) {
	prompt := buildCaptionPrompt(topic)

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// GenerateHashtags suggests count hashtags for a topic.
func (c *HTTPClient) GenerateHashtags(ctx context.Context, topic string, count int) ([]string, error) {
	prompt := buildHashtagPrompt(topic, count)

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return parseHashtags(text, count), nil
}

func (c *HTTPClient) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return "", domain.ErrQuotaExceeded
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", domain.ErrInvalidAPIKey
	default:
		return "", fmt.Errorf("%w: status %d: %s", domain.ErrUpstream, resp.StatusCode, truncate(string(respBody), 200))
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("%w: parse response: %s", domain.ErrUpstream, err)
	}
	if genResp.Error != nil {
		if genResp.Error.Status == "RESOURCE_EXHAUSTED" {
			return "", domain.ErrQuotaExceeded
		}
		return "", fmt.Errorf("%w: %s", domain.ErrUpstream, genResp.Error.Message)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response", domain.ErrUpstream)
	}

	return genResp.Candidates[0].Content.Parts[0].Text, nil
}

func buildCaptionPrompt(topic string) string {
	return fmt.Sprintf(`Create an engaging social media caption for: %s

Requirements:
- Make it catchy and attention-grabbing
- Keep it under 150 characters
- Include 1-2 relevant emojis
- Perfect for Instagram/Facebook/TikTok
- Don't include hashtags (they're generated separately)

Just return the caption, nothing else.`, topic)
}

func buildHashtagPrompt(topic string, count int) string {
	return fmt.Sprintf(`Generate %d trending and relevant hashtags for: %s

Requirements:
- Mix of popular and niche hashtags
- Mix of broad and specific tags
- Perfect for Instagram/TikTok/Facebook

Format: Return ONLY the hashtags separated by spaces, like:
#hashtag1 #hashtag2 #hashtag3`, count, topic)
}

// parseHashtags pulls #tags out of a model response, tolerating newlines
// and stray prose around them.
func parseHashtags(text string, limit int) []string {
	fields := strings.Fields(text)
	tags := make([]string, 0, limit)
	for _, f := range fields {
		if !strings.HasPrefix(f, "#") || len(f) < 2 {
			continue
		}
		tags = append(tags, f)
		if len(tags) == limit {
			break
		}
	}
	return tags
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
