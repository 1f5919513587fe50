package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/vivaply/recommendation-service/internal/cache"
	"github.com/vivaply/recommendation-service/internal/config"
	"github.com/vivaply/recommendation-service/internal/handler"
	"github.com/vivaply/recommendation-service/internal/recommend"
	"github.com/vivaply/recommendation-service/internal/repository"
	"github.com/vivaply/recommendation-service/internal/router"
	"github.com/vivaply/recommendation-service/internal/service"
	"github.com/vivaply/recommendation-service/internal/tmdb"
	"github.com/vivaply/recommendation-service/seeds"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()

	// ------------ PostgreSQL ---------------
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse database config")
	}
	poolConfig.MaxConns = int32(cfg.DBPoolSize)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if err := waitForDB(ctx, pool, logger); err != nil {
		logger.Fatal().Err(err).Msg("database not ready")
	}
	logger.Info().Msg("connected to PostgreSQL")

	// ------------ Run Migrations ---------------
	// for migrate-down using CLI command
	if len(os.Args) > 1 && os.Args[1] == "migrate-down" {
		if err := migrate(ctx, pool, "migrations/create_tables.down.sql"); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate down")
		}
		logger.Info().Msg("migrations dropped")
		return
	}

	if err := migrate(ctx, pool, "migrations/create_tables.up.sql"); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate up")
	}
	logger.Info().Msg("migrations applied")

	// ------------ Setup Seed Data ---------------
	if err := checkSeed(ctx, pool, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to check seed")
	}

	// ------------ Redis ---------------
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	recCache := cache.NewCache(redisClient, cfg.CacheTTL)
	if err := recCache.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("redis not ready")
	}
	logger.Info().Msg("connected to Redis")

	// ------------ Wiring ---------------
	repo := repository.NewRepository(pool)
	tmdbClient := tmdb.NewClient(cfg.TMDBAPIKey, cfg.TMDBBaseURL, cfg.TMDBRateLimit, logger)
	genreSource := recommend.NewBatchGenreSource(tmdbClient, cfg.GenreLookupConcurrency, logger)
	engine := recommend.NewEngine(repo, genreSource, tmdbClient, recommend.Weights{
		LongTerm:     cfg.Scoring.LongTermWeight,
		Recent:       cfg.Scoring.RecentWeight,
		Completed:    cfg.Scoring.CompletedWeight,
		Watching:     cfg.Scoring.WatchingWeight,
		RecencyBoost: cfg.Scoring.RecencyBoost,
		RecentWindow: cfg.Scoring.RecentWindow,
		TopGenres:    cfg.Scoring.TopGenres,
		MaxResults:   cfg.Scoring.MaxResults,
	}, logger)
	svc := service.NewService(repo, recCache, engine, logger)
	h := handler.NewHandler(svc)

	// ---------------- Server --------------------
	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router.Setup(h),
	}

	shutdownCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", cfg.Addr()).Msg("server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-shutdownCtx.Done()
	logger.Info().Msg("shutting down")

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(stopCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func waitForDB(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			return nil
		}
		logger.Info().Int("attempt", i+1).Msg("waiting for database")
		time.Sleep(1 * time.Second)
	}
	return fmt.Errorf("database connection timeout after 30s")
}

func migrate(ctx context.Context, pool *pgxpool.Pool, file string) error {
	sql, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	return nil
}

func checkSeed(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("check users count: %w", err)
	}
	if count > 0 {
		logger.Info().Int("users", count).Msg("database already seeded, skipping")
		return nil
	}
	return seeds.Setup(ctx, pool)
}
