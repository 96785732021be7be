package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"athing/internal/accounts"
	"athing/internal/config"
	"athing/internal/credentials"
	"athing/internal/database"
	"athing/internal/journals"
	"athing/internal/logger"
	"athing/internal/notes"
	"athing/internal/ratelimit"
	"athing/internal/server"
	"athing/internal/session"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	slog.Info("Starting API",
		"env", cfg.AppEnv,
		"port", cfg.Port,
		"redis_addr", cfg.RedisAddr,
		"rate_limit_backend", cfg.RateLimitBackend,
		"maintenance_mode", cfg.MaintenanceMode,
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.New(startCtx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(startCtx); err != nil {
		slog.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}
	slog.Info("Connected to database")

	rdb := connectRedis(startCtx, cfg)
	if rdb != nil {
		defer rdb.Close()
	}

	limiter := newLimiter(cfg, rdb)

	tokens, err := credentials.NewTokens(credentials.TokenConfig{
		Secret:   []byte(cfg.SessionSecret),
		ShortTTL: cfg.SessionTTL,
		LongTTL:  cfg.SessionRememberTTL,
	})
	if err != nil {
		slog.Error("Failed to configure session tokens", "error", err)
		os.Exit(1)
	}

	accountRepo := accounts.NewRepository(db)
	resolver := session.NewResolver(tokens, accountRepo, log)

	accountService := accounts.NewService(accountRepo, tokens, accounts.ServiceConfig{
		MaintenanceMode:           cfg.MaintenanceMode,
		MaintenanceBypassUsername: cfg.MaintenanceBypassUsername,
	})

	var cache redis.UniversalClient
	if rdb != nil {
		cache = rdb
	}
	noteService := notes.NewService(notes.NewRepository(db), cache)
	journalService := journals.NewService(journals.NewRepository(db))

	srv := server.New(cfg, server.Deps{
		DB:       db,
		Redis:    cache,
		Limiter:  limiter,
		Resolver: resolver,
		Accounts: accounts.NewHandler(accountService, cfg.IsProduction()),
		Notes:    notes.NewHandler(noteService),
		Journals: journals.NewHandler(journalService),
	}).HTTPServer()

	go func() {
		slog.Info("API listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down API")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("API stopped")
}

// connectRedis returns a connected client, or nil when Redis is unreachable
// and nothing requires it.
func connectRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		if cfg.RateLimitBackend == config.BackendRedis {
			slog.Error("Redis is required by the rate limiter", "error", err)
			os.Exit(1)
		}
		slog.Warn("Redis connection failed, caching disabled", "error", err)
		_ = rdb.Close()
		return nil
	}

	slog.Info("Connected to Redis")
	return rdb
}

func newLimiter(cfg *config.Config, rdb *redis.Client) ratelimit.Limiter {
	limiterCfg := ratelimit.Config{
		Points: cfg.RateLimitPoints,
		Window: cfg.RateLimitWindow,
	}

	if cfg.RateLimitBackend == config.BackendRedis && rdb != nil {
		return ratelimit.NewRedis(rdb, limiterCfg)
	}
	return ratelimit.NewMemory(limiterCfg)
}
