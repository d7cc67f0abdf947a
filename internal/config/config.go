// Package config loads the import service configuration from environment
// variables. Every setting has a default except the database URL, and the
// whole configuration is validated at startup.
package config

import (
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout covers reading the whole request, including the upload.
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"2m"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is a PostgreSQL connection string, or sqlite:<path> for a local
	// SQLite file. DB_URL is accepted as an alternative name.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"20"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// EnsureSchema creates missing catalog tables at startup.
	EnsureSchema bool `env:"DB_ENSURE_SCHEMA" default:"true"`
}

// ImportConfig holds limits of the import pipeline.
type ImportConfig struct {
	// MaxFileSize is the largest accepted upload in bytes (default: 10MB).
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"10485760"`

	// TempDir is where uploads are staged; empty means the OS temp dir.
	TempDir string `env:"IMPORT_TEMP_DIR"`

	MaxConcurrent int           `env:"IMPORT_MAX_CONCURRENT" default:"5"`
	MaxWait       time.Duration `env:"IMPORT_MAX_WAIT" default:"30s"`
	Timeout       time.Duration `env:"IMPORT_TIMEOUT" default:"5m"`
}

// RateLimitConfig holds per-client request limits.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// ImportsPerMinute limits POST /api/import per client IP (default: 10).
	ImportsPerMinute int `env:"RATE_LIMIT_IMPORTS_PER_MINUTE" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Forwarded-For and X-Real-IP headers are believed.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `env:"METRICS_ENABLED" default:"true"`
	Path    string `env:"METRICS_PATH" default:"/metrics"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// IsSQLite reports whether URL selects the SQLite gateway.
func (c *DatabaseConfig) IsSQLite() bool {
	return strings.HasPrefix(c.URL, SQLitePrefix)
}

// SQLitePath returns the file path of a sqlite: URL.
func (c *DatabaseConfig) SQLitePath() string {
	return strings.TrimPrefix(c.URL, SQLitePrefix)
}

// SQLitePrefix marks a database URL as a SQLite file path.
const SQLitePrefix = "sqlite:"
