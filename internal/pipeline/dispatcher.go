package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iconidentify/sharegrab/internal/domain"
	"github.com/iconidentify/sharegrab/internal/stage"
)

// Dispatcher hands staged assets to the outbound transport in descriptor
// order and releases each asset's backing storage immediately after its
// send attempt, success or failure.
type Dispatcher struct {
	sink   Sink
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher over the given sink.
func NewDispatcher(sink Sink, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sink:   sink,
		logger: logger,
	}
}

// Dispatch sends one asset to its destination. The asset's file is
// removed before Dispatch returns, regardless of the attempt's outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, conversationID string, platform domain.PlatformKind, session *stage.Session, asset *domain.StagedAsset) error {
	defer session.Discard(asset.Path)

	if err := d.sink.Send(ctx, conversationID, platform, asset); err != nil {
		return fmt.Errorf("transport send: %w", err)
	}

	d.logger.Debug("asset delivered",
		"conversation_id", conversationID,
		"kind", asset.Descriptor.Kind,
		"bytes", asset.Size,
	)
	return nil
}
