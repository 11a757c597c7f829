package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ichfliegemitdemflugzeug/bankhop/internal/banks"
	"github.com/ichfliegemitdemflugzeug/bankhop/internal/collect"
	"github.com/ichfliegemitdemflugzeug/bankhop/internal/config"
	"github.com/ichfliegemitdemflugzeug/bankhop/internal/database"
	"github.com/ichfliegemitdemflugzeug/bankhop/internal/logger"
	"github.com/ichfliegemitdemflugzeug/bankhop/internal/nats"
	"github.com/ichfliegemitdemflugzeug/bankhop/internal/publisher"
	"github.com/ichfliegemitdemflugzeug/bankhop/internal/repository"
	"github.com/ichfliegemitdemflugzeug/bankhop/internal/web"
)

func main() {
	// 1. Load config
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// 2. Initialize logger
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	log := logger.Get()
	log.Info().Msg("starting mini app collection & directory service")

	// 3. Setup context with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("received shutdown signal")
		cancel()
	}()

	// 4. Open the event store
	db, err := database.New(ctx, cfg.DatabaseURL, "./data/events.db")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open event store")
	}
	defer db.Close()

	if db.Pool == nil {
		log.Warn().Msg("no DATABASE_URL, using sqlite fallback; stats endpoint disabled")
	}

	eventsRepo, err := repository.NewEventsRepository(db.GORM)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare events repository")
	}

	var statsRepo collect.StatsProvider
	if db.Pool != nil {
		statsRepo = repository.NewStatsRepository(db.Pool)
	}

	// 5. Connect to NATS
	nc, err := nats.New(ctx, cfg.NatsURL)
	if err != nil {
		log.Warn().Err(err).Msg("failed to connect to nats, publishing disabled")
	} else {
		defer nc.Close()
		if err := nc.EnsureStream(ctx, "WEBAPP_EVENTS", []string{publisher.SubjectPrefix + ">"}); err != nil {
			log.Warn().Err(err).Msg("failed to ensure events stream")
		}
	}

	var pub collect.EventPublisher
	if nc != nil {
		pub = publisher.NewNATSPublisher(nc.Conn)
	}

	// 6. Load the bank registry
	registry, err := banks.LoadFile(cfg.BanksFile)
	if err != nil {
		log.Warn().Err(err).Str("file", cfg.BanksFile).Msg("bank registry load failed, serving built-in list")
		registry = banks.Builtin()
	}
	log.Info().Int("banks", len(registry)).Msg("bank registry ready")

	// 7. Live event feed hub
	hub := web.NewHub()
	go hub.Run()

	// 8. HTTP server
	handler := collect.NewHandler(eventsRepo, pub, hub, statsRepo, registry, log)

	srv := web.NewServer(&web.Config{
		Port:           cfg.HTTPPort,
		StaticDir:      cfg.StaticDir,
		AllowedOrigins: cfg.AllowedOrigins,
		IngestRPS:      cfg.IngestRPS,
		IngestBurst:    cfg.IngestBurst,
	}, hub)
	srv.RegisterCollectHandler(handler)

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("http server listening")
		if err := srv.Start(); err != nil {
			log.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
	log.Info().Msg("bye")
}
