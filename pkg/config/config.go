package config

import (
	"fmt"
	"time"
)

// Config is the root configuration structure for the Florence review daemon.
// It contains all configuration sections for the decision engine, persisted
// state storage, engagement sources, the presentation sink, the admin server,
// and telemetry settings.
type Config struct {
	// Engine contains decision engine configuration including the debounce
	// and cooldown intervals, debug bypass, and fetch timeout.
	Engine EngineConfig `yaml:"engine"`

	// Storage contains configuration for the persisted gate and skip state
	// including backend selection and maintenance scheduling.
	Storage StorageConfig `yaml:"storage"`

	// Engagements contains configuration for the engagement source the
	// engine fetches candidates from.
	Engagements EngagementsConfig `yaml:"engagements"`

	// Identity contains the local account identity configuration.
	Identity IdentityConfig `yaml:"identity"`

	// Sink contains configuration for where admitted prompts are delivered.
	Sink SinkConfig `yaml:"sink"`

	// Server contains admin HTTP server configuration including listen
	// address, timeouts, and the destructive-endpoint guard.
	Server ServerConfig `yaml:"server"`

	// Telemetry contains configuration for observability including logging
	// and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// EngineConfig contains configuration for the review decision engine.
type EngineConfig struct {
	// Debounce is the minimum spacing between consecutive decision cycles.
	// Calls closer together than this are refused, and every call re-arms
	// the window. Set to a negative value to disable the spacing guard.
	// Default: 1s
	Debounce time.Duration `yaml:"debounce"`

	// Cooldown is the minimum interval between two presented prompts. It is
	// measured from the last recorded prompt and survives restarts. Set to
	// a negative value to disable the cooldown entirely.
	// Default: 24h
	Cooldown time.Duration `yaml:"cooldown"`

	// DebugBypass admits every decision cycle past the lifetime latch, the
	// cooldown, and the skip registry. The debounce still applies. A bypass
	// enabled at runtime is persisted and overrides this field on restart.
	// Default: false
	DebugBypass bool `yaml:"debug_bypass"`

	// FetchTimeout bounds identity and engagement fetches within a single
	// decision cycle.
	// Default: 10s
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// Strict makes invariant violations panic instead of suppressing the
	// cycle. Intended for tests and staging.
	// Default: false
	Strict bool `yaml:"strict"`
}

// StorageConfig contains configuration for persisted review state.
type StorageConfig struct {
	// Backend specifies the storage backend for gate and skip state.
	// Options: "memory", "file", "sqlite", "postgres", "redis"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// File contains file-backend configuration.
	File FileStorageConfig `yaml:"file"`

	// SQLite contains SQLite-backend configuration.
	SQLite SQLiteStorageConfig `yaml:"sqlite"`

	// Postgres contains PostgreSQL-backend configuration.
	Postgres PostgresStorageConfig `yaml:"postgres"`

	// Redis contains Redis-backend configuration.
	Redis RedisStorageConfig `yaml:"redis"`

	// Maintenance contains storage compaction scheduling.
	Maintenance MaintenanceConfig `yaml:"maintenance"`
}

// FileStorageConfig contains file-backend configuration.
type FileStorageConfig struct {
	// Path is the JSON state file location.
	// Default: "data/review-state.json"
	Path string `yaml:"path"`
}

// SQLiteStorageConfig contains SQLite-backend configuration.
type SQLiteStorageConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/review-state.db"
	Path string `yaml:"path"`

	// CheckpointInterval is how often to checkpoint the WAL.
	// Default: 5m
	CheckpointInterval time.Duration `yaml:"checkpoint_interval"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// PostgresStorageConfig contains PostgreSQL-backend configuration.
type PostgresStorageConfig struct {
	// Host is the PostgreSQL server hostname.
	Host string `yaml:"host"`

	// Port is the PostgreSQL server port.
	// Default: 5432
	Port int `yaml:"port"`

	// Database is the name of the database to use.
	Database string `yaml:"database"`

	// User is the PostgreSQL user for authentication.
	User string `yaml:"user"`

	// Password is the PostgreSQL password for authentication.
	// This should typically be loaded from an environment variable.
	Password string `yaml:"password"`

	// SSLMode controls SSL/TLS connection mode.
	// Options: "disable", "require", "verify-ca", "verify-full"
	// Default: "require"
	SSLMode string `yaml:"ssl_mode"`

	// Table is the table holding state entries.
	// Default: "vesta_kv_entries"
	Table string `yaml:"table"`
}

// DSN returns the lib/pq connection string for this configuration.
func (c PostgresStorageConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s sslmode=%s",
		c.Host, c.Port, c.Database, c.User, c.SSLMode)
	if c.Password != "" {
		dsn += fmt.Sprintf(" password=%s", c.Password)
	}
	return dsn
}

// RedisStorageConfig contains Redis-backend configuration.
type RedisStorageConfig struct {
	// Addr is the host:port of the Redis server.
	// Default: "127.0.0.1:6379"
	Addr string `yaml:"addr"`

	// Password authenticates against the server. Empty for none.
	Password string `yaml:"password"`

	// DB selects the logical database.
	// Default: 0
	DB int `yaml:"db"`

	// Prefix namespaces all keys.
	// Default: "vesta:kv:"
	Prefix string `yaml:"prefix"`
}

// MaintenanceConfig contains storage compaction scheduling.
type MaintenanceConfig struct {
	// Enabled controls whether scheduled compaction runs. Compaction
	// reclaims storage slack and never removes live entries.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Schedule is a cron expression for scheduling compaction.
	// Default: "0 3 * * *" (daily at 3 AM)
	Schedule string `yaml:"schedule"`
}

// EngagementsConfig contains configuration for the engagement source.
type EngagementsConfig struct {
	// Backend specifies the engagement source backend.
	// Options: "memory", "sqlite"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-backend configuration.
	SQLite EngagementsSQLiteConfig `yaml:"sqlite"`
}

// EngagementsSQLiteConfig contains SQLite engagement source configuration.
type EngagementsSQLiteConfig struct {
	// Path is the file path for the engagements database.
	// Default: "data/engagements.db"
	Path string `yaml:"path"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// IdentityConfig contains the local account identity configuration.
type IdentityConfig struct {
	// UserID is the stable identifier of the current account. An empty
	// value means signed out; every decision cycle then suppresses.
	UserID string `yaml:"user_id"`
}

// SinkConfig contains configuration for prompt delivery.
type SinkConfig struct {
	// Type specifies where admitted prompts are delivered.
	// Options: "log", "webhook"
	// Default: "log"
	Type string `yaml:"type"`

	// Webhook contains webhook sink configuration.
	Webhook WebhookSinkConfig `yaml:"webhook"`
}

// WebhookSinkConfig contains webhook sink configuration.
type WebhookSinkConfig struct {
	// URL is the endpoint the candidate is POSTed to as JSON.
	// Required when the sink type is "webhook".
	URL string `yaml:"url"`

	// Timeout is the maximum duration for a delivery attempt.
	// Default: 5s
	Timeout time.Duration `yaml:"timeout"`
}

// ServerConfig contains configuration for the admin HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the admin server.
	// Format: "host:port" (e.g., "127.0.0.1:8750").
	// Default: "127.0.0.1:8750"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// AllowClear enables the state-clearing endpoint. Clearing wipes the
	// lifetime latch, the cooldown anchor, and the skip registry.
	// Default: false
	AllowClear bool `yaml:"allow_clear"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics endpoint configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics endpoint configuration.
type MetricsConfig struct {
	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
