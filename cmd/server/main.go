package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/moredevelopers26/chattest/internal/api"
	"github.com/moredevelopers26/chattest/internal/api/middleware"
	"github.com/moredevelopers26/chattest/internal/assistant"
	"github.com/moredevelopers26/chattest/internal/chat"
	"github.com/moredevelopers26/chattest/internal/config"
	"github.com/moredevelopers26/chattest/internal/handlers"
	"github.com/moredevelopers26/chattest/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// Open the durable store
	kv, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("store connection failed")
	}
	defer kv.Close()
	logger.Info().Str("backend", cfg.StoreBackend).Msg("store opened")

	if cfg.StoreQuota > 0 {
		kv = store.NewBounded(kv, cfg.StoreQuota)
		logger.Info().Int("quota_bytes", cfg.StoreQuota).Msg("storage budget enabled")
	}

	svc := chat.New(ctx, store.NewAdapter(kv, logger), logger)

	// The assistant is optional; without a key it answers with its fallback
	var gen assistant.Generator
	if cfg.GeminiAPIKey != "" {
		g, err := assistant.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error().Err(err).Msg("gemini client unavailable")
		} else {
			gen = g
			logger.Info().Str("model", cfg.GeminiModel).Msg("assistant enabled")
		}
	} else {
		logger.Warn().Msg("GEMINI_API_KEY not set, assistant disabled")
	}

	h := handlers.NewHandler(svc, assistant.NewResponder(gen, logger), logger, handlers.Options{
		TypingIdle: cfg.TypingIdle,
		EchoDelay:  cfg.EchoDelay,
	})

	// Create router
	router := api.NewRouter(api.RouterConfig{
		Logger:  logger,
		Chat:    svc,
		Handler: h,
		RateLimit: middleware.RateLimiterConfig{
			PerMinute:        cfg.RateLimitPerMinute,
			Whitelist:        cfg.RateLimitWhitelist,
			AutoBlockEnabled: cfg.AutoBlockEnabled,
		},
	})
	defer router.Stop()

	// Create server
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting chat server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Close websockets and pending bot replies before draining requests
	h.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
