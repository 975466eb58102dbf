// Package caption wraps the external text-generation service with input
// sanitization and quota/error translation.
package caption

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iconidentify/sharegrab/internal/domain"
	"github.com/iconidentify/sharegrab/pkg/gemini"
)

// Generator is the caption/hashtag adapter. Generation is best-effort,
// user-triggered and single-shot: no retry is ever attempted, and a quota
// error tells the caller to advise waiting rather than busy-looping.
type Generator struct {
	client       gemini.Client
	maxTopicLen  int
	hashtagCount int
	logger       *slog.Logger
}

// NewGenerator creates the adapter. A nil client disables generation.
func NewGenerator(client gemini.Client, maxTopicLen, hashtagCount int, logger *slog.Logger) *Generator {
	if maxTopicLen <= 0 {
		maxTopicLen = 200
	}
	if hashtagCount <= 0 {
		hashtagCount = 15
	}
	return &Generator{
		client:       client,
		maxTopicLen:  maxTopicLen,
		hashtagCount: hashtagCount,
		logger:       logger,
	}
}

// Enabled reports whether the upstream service is configured.
func (g *Generator) Enabled() bool {
	return g.client != nil
}

// Generate produces a caption and hashtag set for a topic. The topic is
// validated locally before any upstream call is made.
func (g *Generator) Generate(ctx context.Context, req domain.CaptionRequest) (domain.CaptionResult, error) {
	topic, err := g.sanitize(req.Topic)
	if err != nil {
		return domain.CaptionResult{}, err
	}
	if !g.Enabled() {
		return domain.CaptionResult{}, domain.ErrInvalidAPIKey
	}

	captionText, err := g.client.GenerateCaption(ctx, topic)
	if err != nil {
		return domain.CaptionResult{}, g.translate(err)
	}

	hashtags, err := g.client.GenerateHashtags(ctx, topic, g.hashtagCount)
	if err != nil {
		return domain.CaptionResult{}, g.translate(err)
	}

	return domain.CaptionResult{
		Caption:  captionText,
		Hashtags: hashtags,
	}, nil
}

// Hashtags produces only the hashtag set for a topic.
func (g *Generator) Hashtags(ctx context.Context, req domain.CaptionRequest) ([]string, error) {
	topic, err := g.sanitize(req.Topic)
	if err != nil {
		return nil, err
	}
	if !g.Enabled() {
		return nil, domain.ErrInvalidAPIKey
	}

	hashtags, err := g.client.GenerateHashtags(ctx, topic, g.hashtagCount)
	if err != nil {
		return nil, g.translate(err)
	}
	return hashtags, nil
}

func (g *Generator) sanitize(topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", domain.ErrEmptyTopic
	}
	if len(topic) > g.maxTopicLen {
		return "", fmt.Errorf("%w: %d > %d characters", domain.ErrTopicTooLong, len(topic), g.maxTopicLen)
	}
	return topic, nil
}

// translate collapses upstream failures onto the adapter's taxonomy:
// quota-exceeded, invalid-key, or upstream-error.
func (g *Generator) translate(err error) error {
	switch {
	case errors.Is(err, domain.ErrQuotaExceeded),
		errors.Is(err, domain.ErrInvalidAPIKey),
		errors.Is(err, domain.ErrUpstream):
		return err
	default:
		g.logger.Warn("caption upstream error", "error", err)
		return fmt.Errorf("%w: %s", domain.ErrUpstream, err)
	}
}
