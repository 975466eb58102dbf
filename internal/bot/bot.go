// Package bot is the Telegram front end: it turns inbound messages into
// link requests, runs them through the pipeline, and renders outcomes as
// user-facing replies.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/iconidentify/sharegrab/internal/caption"
	"github.com/iconidentify/sharegrab/internal/config"
	"github.com/iconidentify/sharegrab/internal/domain"
	"github.com/iconidentify/sharegrab/internal/history"
	"github.com/iconidentify/sharegrab/internal/pipeline"
	"github.com/iconidentify/sharegrab/internal/worker"
)

// API is the subset of the Telegram bot API the front end uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot wires the update loop to the pipeline worker pool.
type Bot struct {
	api      API
	cfg      config.TelegramConfig
	pipe     *pipeline.Pipeline
	pool     *worker.Pool
	captions *caption.Generator
	journal  *history.Store
	logger   *slog.Logger
}

// New creates the bot front end and its worker pool.
func New(
	api API,
	cfg config.TelegramConfig,
	workerCfg config.WorkerConfig,
	pipe *pipeline.Pipeline,
	captions *caption.Generator,
	journal *history.Store,
	logger *slog.Logger,
) *Bot {
	b := &Bot{
		api:      api,
		cfg:      cfg,
		pipe:     pipe,
		captions: captions,
		journal:  journal,
		logger:   logger,
	}
	b.pool = worker.NewPool(worker.Config{Workers: workerCfg.Count}, b.processRequest, logger)
	return b
}

// Pool exposes the worker pool for health reporting.
func (b *Bot) Pool() *worker.Pool {
	return b.pool
}

// Run starts the workers and consumes updates until ctx is canceled.
func (b *Bot) Run(ctx context.Context) error {
	b.pool.Start()

	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = b.cfg.UpdateTimeout
	updates := b.api.GetUpdatesChan(updateCfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return b.pool.Stop(25 * time.Second)
		case update, ok := <-updates:
			if !ok {
				return b.pool.Stop(25 * time.Second)
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	req := domain.LinkRequest{
		ID:             domain.RequestID("req_" + uuid.New().String()[:8]),
		RawURL:         text,
		ConversationID: strconv.FormatInt(chatID, 10),
		ReceivedAt:     time.Now(),
	}

	b.reply(chatID, "⏳ Processing your link...\nThis may take 30-60 seconds.")
	// A newer link from the same chat replaces whatever that chat still
	// has queued or in flight.
	b.pool.Submit(req, true)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.reply(chatID, welcomeMessage)
	case "help":
		b.reply(chatID, helpMessage)
	case "caption":
		b.handleCaption(ctx, chatID, msg.CommandArguments())
	case "hashtags":
		b.handleHashtags(ctx, chatID, msg.CommandArguments())
	case "stats":
		b.handleStats(ctx, chatID)
	default:
		b.reply(chatID, "Unknown command. Send /help to see what I can do.")
	}
}

// processRequest is the worker pool handler: one call per link request.
func (b *Bot) processRequest(ctx context.Context, req domain.LinkRequest) {
	outcome, err := b.pipe.Process(ctx, req)
	if err != nil {
		// Abandoned request: it was superseded, so no reply is owed.
		b.logger.Info("request abandoned", "request_id", req.ID)
		return
	}

	if outcome.Status == domain.StatusDelivered && outcome.Skipped == 0 {
		// The media sends themselves are the success signal; only
		// multi-item posts with skipped items need an explanation.
		return
	}

	chatID, convErr := strconv.ParseInt(req.ConversationID, 10, 64)
	if convErr != nil {
		b.logger.Error("bad conversation id", "conversation_id", req.ConversationID)
		return
	}
	b.reply(chatID, messageFor(outcome, b.cfg.MaxAttachmentSize))
}

func (b *Bot) handleCaption(ctx context.Context, chatID int64, topic string) {
	result, err := b.captions.Generate(ctx, domain.CaptionRequest{Topic: topic})
	if err != nil {
		b.reply(chatID, captionErrorMessage(err))
		return
	}

	text := "✨ Generated caption:\n\n" + result.Caption
	if len(result.Hashtags) > 0 {
		text += "\n\n" + strings.Join(result.Hashtags, " ")
	}
	b.reply(chatID, text)
}

func (b *Bot) handleHashtags(ctx context.Context, chatID int64, topic string) {
	tags, err := b.captions.Hashtags(ctx, domain.CaptionRequest{Topic: topic})
	if err != nil {
		b.reply(chatID, captionErrorMessage(err))
		return
	}
	b.reply(chatID, "🔖 Suggested hashtags:\n\n"+strings.Join(tags, " "))
}

func (b *Bot) handleStats(ctx context.Context, chatID int64) {
	if b.journal == nil {
		b.reply(chatID, "Statistics are not enabled.")
		return
	}

	stats, err := b.journal.Stats(ctx)
	if err != nil {
		b.logger.Error("load stats", "error", err)
		b.reply(chatID, "Couldn't load statistics right now.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Usage statistics\n\n")
	fmt.Fprintf(&sb, "Requests: %d\n", stats.Total)
	fmt.Fprintf(&sb, "Delivered: %d\n", stats.Delivered)
	fmt.Fprintf(&sb, "Rejected: %d\n", stats.Rejected)
	fmt.Fprintf(&sb, "Failed: %d\n", stats.Failed)
	fmt.Fprintf(&sb, "Data sent: %.1f MB\n", float64(stats.BytesSent)/(1024*1024))
	if len(stats.PerPlatform) > 0 {
		sb.WriteString("\nBy platform:\n")
		for platform, count := range stats.PerPlatform {
			fmt.Fprintf(&sb, "• %s: %d\n", platform, count)
		}
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error("send reply", "chat_id", chatID, "error", err)
	}
}
