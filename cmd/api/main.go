package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aiox-platform/travelbot/internal/api"
	"github.com/aiox-platform/travelbot/internal/channel/telegram"
	"github.com/aiox-platform/travelbot/internal/config"
	"github.com/aiox-platform/travelbot/internal/database"
	"github.com/aiox-platform/travelbot/internal/events"
	"github.com/aiox-platform/travelbot/internal/history"
	"github.com/aiox-platform/travelbot/internal/llm"
	"github.com/aiox-platform/travelbot/internal/media"
	"github.com/aiox-platform/travelbot/internal/middleware"
	iredis "github.com/aiox-platform/travelbot/internal/redis"
	"github.com/aiox-platform/travelbot/internal/search"
	"github.com/aiox-platform/travelbot/internal/server"
	"github.com/aiox-platform/travelbot/internal/turn"
)

// recordStore is a history repository the readiness probe can ping.
type recordStore interface {
	history.Repository
	api.Pinger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis backs rate limiting and, by default, exchange records
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	var store recordStore
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pool, err := database.Open(ctx, cfg.DB)
		if err != nil {
			slog.Error("connecting to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		store = history.NewPostgresStore(pool)
	default:
		store = history.NewRedisStore(redisClient, cfg.Storage.Container)
	}
	slog.Info("exchange record storage ready", "driver", cfg.Storage.Driver)

	// NATS (optional)
	var publisher turn.EventPublisher
	var natsHealthy func() bool
	if cfg.NATS.URL != "" {
		natsClient, err := events.NewClient(ctx, cfg.NATS)
		if err != nil {
			slog.Error("connecting to NATS", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()
		publisher = events.NewPublisher(natsClient.JetStream())
		natsHealthy = natsClient.Healthy
	}

	// Telegram (optional)
	var deliverer turn.Deliverer
	if cfg.Telegram.Token != "" {
		deliverer = telegram.NewSender(cfg.Telegram, slog.Default())
	}

	// Search is degradable, so a missing key leaves the searcher in place
	// and each attempt is logged as unavailable.
	searcher := search.NewClient(cfg.Search)
	model := llm.NewClient(cfg.LLM)

	pipeline := turn.NewPipeline(turn.Deps{
		Normalizer: turn.NewNormalizer(
			media.NewFetcher(),
			media.NewFFmpeg(cfg.Speech.FFmpegPath),
			media.NewSpeech(cfg.Speech),
			media.NewVision(cfg.Vision),
		),
		History:   store,
		Decider:   turn.NewDecider(model, searcher),
		Generator: turn.NewGenerator(model),
		Telegram:  deliverer,
		Events:    publisher,
	})
	turnHandler := turn.NewHandler(pipeline)

	routerCfg := api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		Storage:            store,
		NATSHealthy:        natsHealthy,
	}
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(redisClient, "webhook", cfg.RateLimit.MaxReqs, cfg.RateLimit.WindowSec)
		routerCfg.WebhookRateLimiter = limiter.Middleware
	}

	router := api.NewRouter(routerCfg, api.HandlerSet{
		TravelAssistant: turnHandler.TravelAssistant,
	})

	srv := server.New(cfg.Server, router)
	if err := srv.Run(ctx); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler).With("service", "travelbot"))
}
