// Package pipeline orchestrates a link request from classification
// through extraction, admission, staging and delivery.
package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/iconidentify/sharegrab/internal/classify"
	"github.com/iconidentify/sharegrab/internal/domain"
	"github.com/iconidentify/sharegrab/internal/extractor"
	"github.com/iconidentify/sharegrab/internal/gatekeeper"
	"github.com/iconidentify/sharegrab/internal/stage"
)

// Sink is the outbound delivery transport. Implementations report
// per-asset success or failure; the dispatcher owns asset cleanup.
type Sink interface {
	Send(ctx context.Context, conversationID string, platform domain.PlatformKind, asset *domain.StagedAsset) error
}

// Recorder journals terminal outcomes. Recording is best-effort and never
// affects the outcome itself.
type Recorder interface {
	Record(ctx context.Context, req domain.LinkRequest, outcome domain.Outcome)
}

// Pipeline processes link requests end to end. Each request is an
// independent unit of work; one request's failure never affects others.
type Pipeline struct {
	registry   *extractor.Registry
	gate       *gatekeeper.Gatekeeper
	store      *stage.Store
	dispatcher *Dispatcher
	recorder   Recorder
	logger     *slog.Logger
}

// New creates a pipeline.
func New(
	registry *extractor.Registry,
	gate *gatekeeper.Gatekeeper,
	store *stage.Store,
	sink Sink,
	recorder Recorder,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		registry:   registry,
		gate:       gate,
		store:      store,
		dispatcher: NewDispatcher(sink, logger),
		recorder:   recorder,
		logger:     logger,
	}
}

// Process runs one request to its terminal outcome. The returned error is
// non-nil only when the request was abandoned (context canceled); an
// abandoned request produces no user-facing outcome but still cleans up
// everything it staged.
func (p *Pipeline) Process(ctx context.Context, req domain.LinkRequest) (domain.Outcome, error) {
	logger := p.logger.With("request_id", req.ID, "conversation_id", req.ConversationID)

	// Classification is pure; unsupported links short-circuit with zero
	// network access.
	platform, canonical := classify.Classify(req.RawURL)
	if !platform.Supported() {
		return p.finish(ctx, req, logger, domain.Rejected(domain.PlatformUnsupported, domain.RejectUnsupportedPlatform))
	}

	logger = logger.With("platform", platform)
	logger.Info("processing link", "url", canonical)

	descriptors, err := p.registry.Extract(ctx, platform, canonical)
	if err != nil {
		if abandoned(ctx, err) {
			logger.Info("request abandoned during extraction")
			return domain.Outcome{}, context.Canceled
		}
		return p.finish(ctx, req, logger, outcomeForExtraction(platform, err))
	}

	admitted, skipped, err := p.gate.Admit(descriptors)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOversized):
			return p.finish(ctx, req, logger, domain.Rejected(platform, domain.RejectOversized))
		default:
			return p.finish(ctx, req, logger, domain.Rejected(platform, domain.RejectNoMediaFound))
		}
	}

	session := p.store.Begin(req.ID)
	defer session.Close()

	var (
		delivered int
		bytesSent int64
		lastErr   error
	)

	for _, d := range admitted {
		asset, err := session.Stage(ctx, d)
		if err != nil {
			if abandoned(ctx, err) {
				logger.Info("request abandoned during staging")
				return domain.Outcome{}, context.Canceled
			}
			if errors.Is(err, domain.ErrOversized) {
				// The estimate was wrong; discard this item alone rather
				// than aborting the batch.
				logger.Warn("item oversized after download", "index", d.Index)
				skipped++
				continue
			}
			logger.Warn("staging item failed", "index", d.Index, "error", err)
			lastErr = err
			continue
		}

		if err := p.dispatcher.Dispatch(ctx, req.ConversationID, platform, session, asset); err != nil {
			if abandoned(ctx, err) {
				logger.Info("request abandoned during delivery")
				return domain.Outcome{}, context.Canceled
			}
			logger.Error("delivery failed", "index", d.Index, "error", err)
			outcome := domain.Failed(platform, domain.FailNetwork)
			outcome.Assets = delivered
			outcome.BytesSent = bytesSent
			return p.finish(ctx, req, logger, outcome)
		}

		delivered++
		bytesSent += asset.Size
	}

	if delivered == 0 {
		if lastErr != nil {
			return p.finish(ctx, req, logger, domain.Failed(platform, domain.FailReasonFor(lastErr)))
		}
		// Everything admitted turned out oversized once downloaded.
		return p.finish(ctx, req, logger, domain.Rejected(platform, domain.RejectOversized))
	}

	return p.finish(ctx, req, logger, domain.Delivered(platform, delivered, bytesSent, skipped))
}

func (p *Pipeline) finish(ctx context.Context, req domain.LinkRequest, logger *slog.Logger, outcome domain.Outcome) (domain.Outcome, error) {
	logger.Info("request finished",
		"status", outcome.Status,
		"reason", outcome.Reason(),
		"assets", outcome.Assets,
		"bytes_sent", outcome.BytesSent,
		"skipped", outcome.Skipped,
	)
	if p.recorder != nil {
		p.recorder.Record(ctx, req, outcome)
	}
	return outcome, nil
}

func outcomeForExtraction(platform domain.PlatformKind, err error) domain.Outcome {
	switch {
	case errors.Is(err, domain.ErrPrivateContent):
		return domain.Rejected(platform, domain.RejectPrivateContent)
	case errors.Is(err, domain.ErrContentRemoved), errors.Is(err, domain.ErrNoMedia):
		return domain.Rejected(platform, domain.RejectNoMediaFound)
	default:
		return domain.Failed(platform, domain.FailReasonFor(err))
	}
}

func abandoned(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}
