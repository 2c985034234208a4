// Package config loads catalog service configuration from environment
// variables, applies defaults and validates everything once at startup.
package config

import (
	"net"
	"strconv"
	"strings"
	"time"
)

// MemoryDatabaseURL selects the in-process store instead of PostgreSQL.
const MemoryDatabaseURL = "memory://"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Catalog  CatalogConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Settings SettingsConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout bounds ordinary API calls. Imports use Import.Timeout.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds storage connection settings.
type DatabaseConfig struct {
	// URL is a PostgreSQL connection string, or memory:// for the in-process store.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" default:"memory://"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// Migrate applies the embedded schema on startup.
	Migrate bool `env:"DB_MIGRATE" default:"true"`
}

// IsMemory reports whether the in-process store is selected.
func (c DatabaseConfig) IsMemory() bool {
	return c.URL == MemoryDatabaseURL
}

// ImportConfig holds spreadsheet import settings.
type ImportConfig struct {
	// MaxFileSize accepts plain bytes or a KB/MB/GB suffix.
	MaxFileSize ByteSize `env:"IMPORT_MAX_FILE_SIZE" default:"20MB"`

	MaxConcurrent int           `env:"IMPORT_MAX_CONCURRENT" default:"1"`
	MaxWaitTime   time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"10s"`
	Timeout       time.Duration `env:"IMPORT_TIMEOUT" default:"10m"`

	// Encoding is the CSV text encoding: auto, utf-8 or windows-1251.
	Encoding string `env:"IMPORT_ENCODING" default:"auto"`

	// HistorySize is how many finished runs are kept for the imports endpoint.
	HistorySize int `env:"IMPORT_HISTORY_SIZE" default:"50"`
}

// CatalogConfig holds browse listing settings.
type CatalogConfig struct {
	DefaultPageSize int `env:"CATALOG_PAGE_SIZE" default:"24"`
	MaxPageSize     int `env:"CATALOG_MAX_PAGE_SIZE" default:"100"`
}

// RateLimitConfig holds per-IP rate limits.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`
	ImportPerMinute   int  `env:"RATE_LIMIT_IMPORT" default:"5"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs whose forwarding
	// headers are honoured.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// APIKeys guard the staff endpoints.
	APIKeys []string `env:"API_KEYS"`

	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`
}

// SettingsConfig selects the site settings backend.
type SettingsConfig struct {
	// Backend is file or redis.
	Backend  string `env:"SETTINGS_BACKEND" default:"file"`
	FilePath string `env:"SETTINGS_FILE" default:"data/settings.yaml"`
	RedisURL string `env:"REDIS_URL"`
	RedisKey string `env:"SETTINGS_REDIS_KEY" default:"motorcat:settings"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is text or json.
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ByteSize is a size in bytes that parses "512", "64KB", "20MB" or "1GB".
type ByteSize int64

var sizeUnits = []struct {
	suffix string
	mult   int64
}{
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// ParseByteSize parses a size with an optional binary unit suffix.
func ParseByteSize(s string) (ByteSize, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	mult := int64(1)
	for _, u := range sizeUnits {
		if strings.HasSuffix(s, u.suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			mult = u.mult
			break
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return ByteSize(n * mult), nil
}
