package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gamesforgood/catalog/internal/analytics"
	"github.com/gamesforgood/catalog/internal/api"
	"github.com/gamesforgood/catalog/internal/catalog"
	"github.com/gamesforgood/catalog/internal/config"
	"github.com/gamesforgood/catalog/internal/db"
	"github.com/gamesforgood/catalog/internal/export"
	"github.com/gamesforgood/catalog/internal/ingestion"
	"github.com/gamesforgood/catalog/internal/ranking"
	"github.com/gamesforgood/catalog/internal/repository"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(".")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := db.RunMigrations(cfg.Database.URL()); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer conn.Close()

	gameRepo := repository.NewGameRepository(conn.Pool)
	themeRepo := repository.NewThemeRepository(conn.Pool)
	tagRepo := repository.NewTagRepository(conn.Pool)

	catalogSvc := catalog.NewService(gameRepo, themeRepo, tagRepo, logger)

	var locker ranking.Locker
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		locker = ranking.NewRedisLock(redisClient)
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("redis recompute lock enabled")
	}

	events := analytics.NewClient(cfg.Analytics.BaseURL, cfg.Analytics.Project, cfg.Analytics.Token, logger)
	ranker := ranking.NewRanker(events, gameRepo, locker, logger)

	exporter := export.NewService(catalogSvc, logger)
	importer := ingestion.NewService(catalogSvc, logger)

	handlers := api.NewHandlers(catalogSvc, ranker, exporter, importer, logger)
	server := api.NewServer(cfg.Server, cfg.Admin.Token, handlers, logger)

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("catalog server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
