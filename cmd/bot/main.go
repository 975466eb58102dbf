package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/iconidentify/sharegrab/internal/api"
	"github.com/iconidentify/sharegrab/internal/api/handler"
	"github.com/iconidentify/sharegrab/internal/bot"
	"github.com/iconidentify/sharegrab/internal/caption"
	"github.com/iconidentify/sharegrab/internal/config"
	"github.com/iconidentify/sharegrab/internal/domain"
	"github.com/iconidentify/sharegrab/internal/extractor"
	"github.com/iconidentify/sharegrab/internal/fetch"
	"github.com/iconidentify/sharegrab/internal/gatekeeper"
	"github.com/iconidentify/sharegrab/internal/history"
	"github.com/iconidentify/sharegrab/internal/pipeline"
	"github.com/iconidentify/sharegrab/internal/stage"
	"github.com/iconidentify/sharegrab/pkg/gemini"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("sharegrab %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting sharegrab",
		"version", Version,
		"build_time", BuildTime,
	)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Outcome journal
	journal, err := history.NewStore(cfg.History.Path, logger)
	if err != nil {
		logger.Error("failed to open history store", "error", err)
		os.Exit(1)
	}
	defer journal.Close()

	// Media transfer + scratch storage (sweeps crash leftovers at open)
	fetcher := fetch.NewHTTPFetcher(cfg.Fetch)
	fetcher.SetLogger(logger)

	store, err := stage.NewStore(cfg.Stage.Path, cfg.Telegram.MaxAttachmentSize, fetcher, logger)
	if err != nil {
		logger.Error("failed to open scratch store", "error", err)
		os.Exit(1)
	}

	// Chat transport
	tg, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Error("failed to create telegram client", "error", err)
		os.Exit(1)
	}
	logger.Info("telegram connected", "username", tg.Self.UserName)

	// Pipeline
	registry := extractor.NewRegistry(cfg.Extract, fetcher)
	gate := gatekeeper.New(cfg.Telegram.MaxAttachmentSize, domain.MediaVideo, domain.MediaImage)
	sink := bot.NewSink(tg, cfg.Telegram)
	pipe := pipeline.New(registry, gate, store, sink, journal, logger)

	// Caption adapter (disabled without an API key, like the rest of the
	// bot it degrades rather than refuses to start)
	var geminiClient gemini.Client
	if cfg.Gemini.APIKey != "" {
		geminiClient = gemini.NewClient(cfg.Gemini)
	} else {
		logger.Warn("GEMINI_API_KEY not set, AI features disabled")
	}
	captions := caption.NewGenerator(geminiClient, cfg.Gemini.MaxTopicLength, cfg.Gemini.HashtagCount, logger)

	// Front end
	b := bot.New(tg, cfg.Telegram, cfg.Worker, pipe, captions, journal, logger)

	// Operational HTTP surface for the dashboard
	healthHandler := handler.NewHealthHandler(b.Pool(), journal, store)
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      api.NewRouter(healthHandler, cfg.Server.APIKey),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())

	botDone := make(chan error, 1)
	go func() {
		botDone <- b.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	botExited := false
	select {
	case <-quit:
		logger.Info("shutting down")
	case err := <-botDone:
		botExited = true
		if err != nil {
			logger.Error("bot stopped", "error", err)
		}
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if !awaitBotExit(shutdownCtx, botDone, botExited) {
		logger.Error("bot shutdown timed out")
	}

	logger.Info("shutdown complete")
}

// awaitBotExit waits for the bot goroutine to return. When the first
// select already drained botDone, nothing is owed and waiting again would
// block until the shutdown deadline.
func awaitBotExit(ctx context.Context, botDone <-chan error, alreadyExited bool) bool {
	if alreadyExited {
		return true
	}
	select {
	case <-botDone:
		return true
	case <-ctx.Done():
		return false
	}
}
