package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"booknet/internal/app"
	"booknet/internal/config"
	"booknet/internal/paypal"
	"booknet/internal/ratelimit"
	"booknet/internal/server"
	"booknet/internal/util"
	"booknet/pkg/ai"
	"booknet/pkg/store"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	util.InitLogger(cfg.LogLevel)

	st, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		util.Fatal("failed to init store", "err", err)
	}

	gateway := paypal.NewClient(cfg.PayPalMode, cfg.PayPalClientID, cfg.PayPalClientSecret)
	generator := buildGenerator(cfg)

	var askLimiter *ratelimit.FixedWindowLimiter
	if cfg.AskRateLimitPerMinute > 0 {
		askLimiter, err = ratelimit.NewRedisFixedWindowLimiter(
			cfg.RedisAddr, cfg.RedisPassword, "booknet:ratelimit:ask",
			cfg.AskRateLimitPerMinute, time.Minute,
		)
		if err != nil {
			util.Fatal("failed to init ask rate limiter", "err", err)
		}
	}

	appCore, err := app.New(app.Config{
		Store:         st,
		Gateway:       gateway,
		Generator:     generator,
		PublicBaseURL: cfg.PublicBaseURL,
	})
	if err != nil {
		util.Fatal("failed to init app", "err", err)
	}

	httpServer, err := server.New(server.Config{
		App:        appCore,
		AskLimiter: askLimiter,
	})
	if err != nil {
		util.Fatal("failed to init server", "err", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("booknet server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "err", err)
	}
}

// buildGenerator selects the language-model client from config. A missing
// API key is logged and leaves the assistant endpoint unavailable; payments
// keep serving.
func buildGenerator(cfg config.FileConfig) ai.TextGenerator {
	if cfg.GenerationAPIKey == "" {
		slog.Warn("no generation API key configured, /ai-ask will be unavailable")
		return nil
	}
	switch cfg.GenerationProvider {
	case "gemini":
		gen, err := ai.NewGeminiGenerator(cfg.GenerationAPIKey, cfg.GenerationModel)
		if err != nil {
			util.Fatal("failed to init gemini generator", "err", err)
		}
		return gen
	default:
		return ai.NewOpenAICompatGenerator(cfg.GenerationBaseURL, cfg.GenerationAPIKey, cfg.GenerationModel)
	}
}
