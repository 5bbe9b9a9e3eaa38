package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/dukerupert/roomshare/internal/config"
	"github.com/dukerupert/roomshare/internal/database"
	"github.com/dukerupert/roomshare/internal/live"
	"github.com/dukerupert/roomshare/internal/live/redisnotify"
	"github.com/dukerupert/roomshare/internal/logging"
	"github.com/dukerupert/roomshare/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := live.NewHub(logger)
	var notifier live.Notifier = hub
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()

		rn := redisnotify.New(client, hub, logger)
		if err := rn.Start(ctx); err != nil {
			logger.Error("failed to start redis notifications", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		defer rn.Close()
		notifier = rn
	}

	srv := server.New(db, notifier, server.Options{
		SessionTTL:     cfg.SessionTTL,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		OriginPatterns: cfg.OriginPatterns,
	}, logger)

	go cleanupLoop(ctx, srv, cfg.CleanupInterval, logger.With("component", "cleanup"))

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("roomshare listening", "addr", httpServer.Addr, "redis", cfg.RedisAddr != "")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down")
	srv.Hub().Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

// cleanupLoop removes expired sessions and idle rate limiter entries.
func cleanupLoop(ctx context.Context, srv *server.Server, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := srv.Identity().CleanupExpired(ctx)
			if err != nil {
				logger.Warn("session cleanup", "error", err)
			} else if n > 0 {
				logger.Info("expired sessions removed", "count", n)
			}
			srv.RateLimiter().Cleanup(every)
		}
	}
}
