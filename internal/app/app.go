// Package app builds the runtime dependencies shared by the server and the
// admin CLI from a loaded configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/JonMunkholm/motorcat/internal/catalog"
	"github.com/JonMunkholm/motorcat/internal/config"
	"github.com/JonMunkholm/motorcat/internal/importer"
	"github.com/JonMunkholm/motorcat/internal/settings"
	"github.com/JonMunkholm/motorcat/internal/storage/memory"
	"github.com/JonMunkholm/motorcat/internal/storage/postgres"
)

// OpenStore returns the configured catalog store and a function releasing it.
// PostgreSQL stores are migrated first when cfg.Migrate is set.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (catalog.Store, func(), error) {
	if cfg.IsMemory() {
		slog.Warn("using in-memory store, data is lost on exit")
		return memory.New(), func() {}, nil
	}

	pool, err := postgres.Open(ctx, cfg.URL, postgres.PoolConfig{
		MaxConns:        cfg.MaxConns,
		MinConns:        cfg.MinConns,
		MaxConnLifetime: cfg.MaxConnLifetime,
		MaxConnIdleTime: cfg.MaxConnIdleTime,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}

	slog.Info("connected to database", "name", databaseName(cfg.URL))
	return postgres.New(pool), pool.Close, nil
}

// OpenSettings returns the configured settings backend and a function
// releasing it.
func OpenSettings(ctx context.Context, cfg config.SettingsConfig) (settings.Store, func(), error) {
	switch strings.ToLower(cfg.Backend) {
	case "redis":
		client, err := settings.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return settings.NewRedisStore(client, cfg.RedisKey), func() { client.Close() }, nil
	case "", "file":
		return settings.NewFileStore(cfg.FilePath), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown settings backend %q", cfg.Backend)
	}
}

// ImporterConfig maps import settings onto the importer service.
func ImporterConfig(cfg config.ImportConfig) importer.Config {
	return importer.Config{
		MaxConcurrent: cfg.MaxConcurrent,
		MaxWait:       cfg.MaxWaitTime,
		Timeout:       cfg.Timeout,
		HistorySize:   cfg.HistorySize,
		Read: importer.ReadOptions{
			Encoding: importer.ParseEncoding(cfg.Encoding),
			MaxSize:  int64(cfg.MaxFileSize),
		},
	}
}

// ApplyCatalog installs listing page sizes.
func ApplyCatalog(cfg config.CatalogConfig) {
	if cfg.DefaultPageSize > 0 {
		catalog.DefaultPageSize = cfg.DefaultPageSize
	}
	if cfg.MaxPageSize > 0 {
		catalog.MaxPageSize = cfg.MaxPageSize
	}
}

func databaseName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}
