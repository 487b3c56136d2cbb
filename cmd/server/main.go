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

	"sports-odds-display/internal/alerts"
	"sports-odds-display/internal/api"
	"sports-odds-display/internal/config"
	"sports-odds-display/internal/preferences"
	"sports-odds-display/internal/server"
)

func main() {
	cfg := config.Load()

	if err := config.Validate(cfg); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	level, _ := config.ParseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	openCtx, openCancel := context.WithTimeout(ctx, 10*time.Second)
	store, err := preferences.Open(openCtx, cfg)
	openCancel()
	if err != nil {
		slog.Error("Failed to open preference store", "backend", cfg.PreferenceBackend, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Preference store ready", "backend", cfg.PreferenceBackend)

	notifier := alerts.NewNotifier(cfg.AlertCooldown)

	// Leave the interface nil when no feed is configured
	var feed server.MatchSource
	if cfg.FeedEnabled() {
		feed = api.NewFeedClient(cfg.FeedURL, cfg.FeedAPIKey, cfg.FeedRequestsPerMinute, cfg.FeedTimeout)
		slog.Info("Odds feed enabled", "url", cfg.FeedURL, "rpm", cfg.FeedRequestsPerMinute)
	} else {
		slog.Info("Odds feed disabled: ODDS_FEED_URL not set")
	}

	handler := server.NewHandler(store, feed, notifier, cfg.DefaultNotation)
	srv := server.NewHTTPServer(":"+cfg.Port, server.NewRouter(handler, cfg.CORSAllowedOrigins))

	go func() {
		cleanupTicker := time.NewTicker(config.DefaultCleanupInterval)
		defer cleanupTicker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-cleanupTicker.C:
				notifier.CleanupOldAlerts()
				slog.Debug("Pruned malformed-odds alerts", "tracked", notifier.Tracked())
			}
		}
	}()

	go func() {
		slog.Info("Starting odds display server",
			"port", cfg.Port,
			"default_notation", cfg.DefaultNotation,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			cancel()
		}
	}()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		slog.Info("Shutdown signal received, stopping...")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	slog.Info("Server stopped gracefully")
}
