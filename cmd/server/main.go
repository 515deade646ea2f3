package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JMirval/alelysee/internal/config"
	"github.com/JMirval/alelysee/internal/db"
	"github.com/JMirval/alelysee/internal/feed"
	"github.com/JMirval/alelysee/internal/handler"
	"github.com/JMirval/alelysee/internal/metrics"
	"github.com/JMirval/alelysee/internal/middleware"
	"github.com/JMirval/alelysee/internal/repository"
	"github.com/JMirval/alelysee/internal/router"
	"github.com/JMirval/alelysee/internal/seed"
	"github.com/JMirval/alelysee/internal/service"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "alelysee-feed")
	log := middleware.Logger

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		store repository.Repository
		pool  *pgxpool.Pool
		sqlDB *sql.DB
	)
	switch cfg.DBDriver {
	case config.DriverPostgres:
		var err error
		pool, err = db.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		if err := db.MigratePostgres(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
		store = repository.NewFeedRepo(pool)
	case config.DriverSQLite:
		var err error
		sqlDB, err = db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.SQLitePath).Msg("failed to open sqlite database")
		}
		defer sqlDB.Close()
		store = repository.NewSQLiteRepo(sqlDB)
	default:
		store = repository.NewMemoryStore()
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("store ready")

	store = repository.NewBreaker(store, repository.DefaultBreakerConfig(), log)

	if cfg.SeedOnEmpty {
		if _, err := seed.New(store, seed.DefaultOptions(), log).SeedIfEmpty(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to seed store")
		}
	}

	cache := service.NewCacheService(cfg.CacheURL(), log)
	defer cache.Close()

	if pool != nil && cache.Enabled() {
		go service.NewCacheWorker(pool, cache, log).Start(ctx)
	}

	metrics.Register(pool)

	engine, err := feed.NewEngine(store, feed.DefaultConfig(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build feed engine")
	}

	handlers := &router.Handlers{
		Feed:   handler.NewFeedHandler(engine, service.NewViewService(store, log), log),
		Video:  handler.NewVideoHandler(service.NewVideoService(store, cache, log), log),
		Health: handler.NewHealthHandler(store, cfg.DBDriver, cache.Client()),
		Auth:   middleware.NewAuthenticator(cfg.JWTSecret, cfg.JWTIssuer),
	}

	app := fiber.New(fiber.Config{
		AppName:      "Alelysee Feed API",
		ServerHeader: "Alelysee",
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})
	router.Setup(app, handlers, cfg.CORSOrigins)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("feed backend starting")
	if err := app.Listen(":"+cfg.Port, fiber.ListenConfig{DisableStartupMessage: true}); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
