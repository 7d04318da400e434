package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/galvan-crm/galvan/internal/app"
	"github.com/galvan-crm/galvan/internal/cache"
	platformcache "github.com/galvan-crm/galvan/internal/platform/cache"
	"github.com/galvan-crm/galvan/internal/platform/db"
	"github.com/galvan-crm/galvan/internal/recipes"
	"github.com/galvan-crm/galvan/internal/records"
	"github.com/galvan-crm/galvan/internal/requests"
	"github.com/galvan-crm/galvan/internal/schema"
	"github.com/galvan-crm/galvan/internal/sequence"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	if cfg.SchemaBootstrap {
		if err := schema.Bootstrap(ctx, dbpool, logger); err != nil {
			logger.Error("bootstrap schema", slog.Any("error", err))
			os.Exit(1)
		}
	}

	redisClient, err := platformcache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, serving without response cache", slog.Any("error", err))
		redisClient = nil
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	responseCache := cache.New(redisClient, cfg.CacheTTL, logger)

	recordsRepo := records.NewRepository(dbpool)
	recordsService := records.NewService(dbpool, recordsRepo, responseCache, logger, cfg.CascadeStrict)
	recordsHandler := records.NewHandler(logger, recordsService)

	sequenceService := sequence.NewService(sequence.NewRepository(dbpool))
	sequenceHandler := sequence.NewHandler(logger, sequenceService)

	requestsService := requests.NewService(requests.NewRepository(dbpool), responseCache, logger)
	requestsHandler := requests.NewHandler(logger, requestsService)

	recipesService := recipes.NewService(recipes.NewRepository(dbpool))
	recipesHandler := recipes.NewHandler(logger, recipesService)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		RecordsHandler:  recordsHandler,
		SequenceHandler: sequenceHandler,
		RequestsHandler: requestsHandler,
		RecipesHandler:  recipesHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
