package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/motorcat/internal/app"
	"github.com/JonMunkholm/motorcat/internal/config"
	"github.com/JonMunkholm/motorcat/internal/importer"
	"github.com/JonMunkholm/motorcat/internal/logging"
	"github.com/JonMunkholm/motorcat/internal/web"
)

func main() {
	// Overload lets a local .env win over the shell environment.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()

	store, closeStore, err := app.OpenStore(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	siteSettings, closeSettings, err := app.OpenSettings(ctx, cfg.Settings)
	if err != nil {
		slog.Error("failed to open settings backend", "backend", cfg.Settings.Backend, "error", err)
		os.Exit(1)
	}
	defer closeSettings()

	app.ApplyCatalog(cfg.Catalog)

	imports := importer.NewService(store, app.ImporterConfig(cfg.Import), logger.With("component", "importer"))
	server := web.NewServer(cfg, store, imports, siteSettings)

	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := imports.Limiter().Status(); status.Active > 0 {
			slog.Info("waiting for imports to finish", "active", status.Active)
			if err := imports.Limiter().Drain(shutdownCtx); err != nil {
				slog.Warn("imports did not finish in time", "error", err)
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
