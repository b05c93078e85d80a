package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/user/gitfeed/internal/config"
	"github.com/user/gitfeed/internal/feed"
	"github.com/user/gitfeed/internal/github"
	"github.com/user/gitfeed/internal/notifier"
	"github.com/user/gitfeed/internal/server"
	"github.com/user/gitfeed/internal/storage"
	"github.com/user/gitfeed/internal/telegram"
	"github.com/user/gitfeed/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := logger.Init(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	logger.Info().Msg("Starting GitHub activity feed")

	ctx := context.Background()
	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to initialize event store")
	}
	defer store.Close()
	logger.Info().Str("driver", cfg.Database.Driver).Msg("Event store initialized")

	clock := func() time.Time { return time.Now().UTC() }
	zone := feed.Zone{Label: cfg.Feed.ZoneLabel, Offset: cfg.Feed.DisplayOffset}
	svc := feed.NewService(store, feed.Options{
		Window: cfg.Window(),
		Zone:   &zone,
		Limit:  cfg.Feed.Limit,
		Now:    clock,
	})

	// Telegram is optional: stored events are forwarded only when a bot and
	// a target chat are configured.
	var (
		bot      *telegram.Bot
		eventsCh chan storage.Event
		notified = make(chan struct{})
	)
	if cfg.TelegramEnabled() {
		builder := telegram.NewMessageBuilder(zone)
		bot, err = telegram.NewBot(cfg.Telegram.Token, cfg.Telegram.Debug, svc, builder)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
		}
		bot.Start()

		if cfg.Telegram.ChatID != 0 {
			eventsCh = make(chan storage.Event, 100)
			notify := notifier.NewNotifier(bot, cfg.Telegram.ChatID, builder)
			go func() {
				notify.Run(eventsCh)
				close(notified)
			}()
			logger.Info().Int64("chat_id", cfg.Telegram.ChatID).Msg("Event notifications enabled")
		} else {
			logger.Warn().Msg("telegram.chat_id not set, event notifications disabled")
		}
	}

	webhookHandler := github.NewWebhookHandler(github.NewNormalizer(clock), svc, eventsCh, cfg.Server.MaxBodyBytes)
	r := server.NewRouter(server.Deps{
		Webhook:     webhookHandler,
		Events:      feed.NewHandler(svc),
		Store:       store,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.ServerAddress()).
			Dur("window", cfg.Window()).
			Str("zone", zone.Label).
			Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// Handlers still running after a timed out Shutdown stop notifying here.
	webhookHandler.CloseEvents()
	if eventsCh != nil {
		select {
		case <-notified:
		case <-shutdownCtx.Done():
			logger.Warn().Msg("Pending notifications dropped")
		}
	}
	if bot != nil {
		bot.Stop()
	}

	logger.Info().Msg("Shutdown complete")
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (storage.EventStore, error) {
	switch cfg.Driver {
	case "sqlite":
		db, err := storage.NewDatabase(cfg.Path)
		if err != nil {
			return nil, err
		}
		return storage.NewSQLiteEventStore(db), nil
	case "postgres":
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		return storage.NewPostgresEventStore(connectCtx, cfg.DSN)
	case "memory":
		return storage.NewMemoryEventStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
