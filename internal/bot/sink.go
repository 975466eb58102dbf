package bot

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/iconidentify/sharegrab/internal/config"
	"github.com/iconidentify/sharegrab/internal/domain"
)

// sender is the subset of the Telegram API the sink uses. Tests swap in a
// recording fake.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Sink delivers staged assets to Telegram chats. It implements
// pipeline.Sink.
type Sink struct {
	api sender
	cfg config.TelegramConfig
}

// NewSink creates the Telegram delivery sink.
func NewSink(api sender, cfg config.TelegramConfig) *Sink {
	return &Sink{
		api: api,
		cfg: cfg,
	}
}

// Send uploads one staged asset to the destination chat. The media kind
// selects the Telegram method: videos stream, images send as photos, and
// story frames ride along as whichever the file extension indicates.
func (s *Sink) Send(ctx context.Context, conversationID string, platform domain.PlatformKind, asset *domain.StagedAsset) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	chatID, err := strconv.ParseInt(conversationID, 10, 64)
	if err != nil {
		return fmt.Errorf("bad conversation id %q: %w", conversationID, err)
	}

	caption := deliveryCaption(platform, asset.Descriptor)
	file := tgbotapi.FilePath(asset.Path)

	var msg tgbotapi.Chattable
	switch asset.Descriptor.Kind {
	case domain.MediaImage:
		photo := tgbotapi.NewPhoto(chatID, file)
		photo.Caption = caption
		msg = photo
	case domain.MediaStoryFrame:
		doc := tgbotapi.NewDocument(chatID, file)
		doc.Caption = caption
		msg = doc
	default:
		video := tgbotapi.NewVideo(chatID, file)
		video.Caption = caption
		video.SupportsStreaming = true
		msg = video
	}

	return s.send(ctx, msg)
}

// send runs one upload bounded by the configured send timeout. The
// library call itself is not context-aware, so the wait is.
func (s *Sink) send(ctx context.Context, msg tgbotapi.Chattable) error {
	if s.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.SendTimeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.api.Send(msg)
		done <- err
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %s", domain.ErrSendFailed, ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: %s", domain.ErrSendFailed, err)
		}
		return nil
	}
}

// deliveryCaption renders the caption for one asset. Only the first item
// of a post carries text; the rest of a carousel rides caption-free so
// multi-item deliveries read as one post.
func deliveryCaption(platform domain.PlatformKind, d domain.MediaDescriptor) string {
	if d.Index > 0 {
		return ""
	}
	text := "Downloaded from " + platform.DisplayName()
	if d.Caption != "" {
		original := d.Caption
		if len(original) > 1000 {
			original = original[:1000] + "..."
		}
		text += "\n\n" + original
	}
	return text
}
