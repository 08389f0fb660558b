package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/exp/slog"

	"peerwave-widget/internal/config"
	"peerwave-widget/internal/database"
	"peerwave-widget/internal/handlers"
	"peerwave-widget/internal/lib/logger/sl"
	"peerwave-widget/internal/lib/logger/slogpretty"
	"peerwave-widget/internal/middleware"
	"peerwave-widget/internal/peerwave"
	"peerwave-widget/internal/router"
	"peerwave-widget/internal/websocket"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	log := setupLogger(cfg.Env)
	log.Info("✓ Environment variables loaded", slog.String("env", cfg.Env))

	// ──── Step 2: Initialize Redis Clients (optional) ────
	var redisClients *database.RedisClients
	if cfg.RedisURL != "" {
		var err error
		redisClients, err = database.NewRedisClients(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Error("✗ Redis connection failed", sl.Err(err))
			os.Exit(1)
		}
		defer redisClients.Close()
		log.Info("✓ Redis connected, widget updates use pub/sub")
	} else {
		log.Info("✓ Redis not configured, widget updates are written directly")
	}

	// ──── Step 3: Initialize Peerwave Client ────
	chatClient := peerwave.NewClient(cfg.PeerwaveURL, cfg.PeerwaveModel, cfg.RequestTimeout, log)
	log.Info("✓ Peerwave client initialized",
		slog.String("endpoint", cfg.PeerwaveURL),
		slog.String("model", cfg.PeerwaveModel),
	)

	// ──── Step 4: Start WebSocket Hub ────
	wsHub := websocket.NewHub(chatClient, cfg.Prompt, redisClients, log)
	log.Info("✓ WebSocket hub started")

	// ──── Initialize Handlers ────
	pageHandler := handlers.NewPageHandler(cfg.Prompt, router.WSPath, log)
	healthHandler := handlers.NewHealthHandler(wsHub)

	// WebSocket upgrade limiter (per IP)
	wsLimiter := middleware.NewRateLimiter(cfg.WSRatePerMinute, time.Minute)

	// ──── Step 5: Start HTTP Server ────
	r := router.New(
		pageHandler,
		healthHandler,
		wsHub,
		wsLimiter,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sign := <-sigChan

		log.Info("shutting down", slog.String("signal", sign.String()))
		wsHub.Close()
		wsLimiter.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Info(fmt.Sprintf("✓ Peerwave widget ready on http://localhost:%s", cfg.Port))
	log.Info(fmt.Sprintf("  WS:  ws://localhost:%s%s", cfg.Port, router.WSPath))

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Error("server error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("server stopped")
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
