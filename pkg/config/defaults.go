package config

import "time"

// Default values for configuration fields.
const (
	// Engine defaults
	DefaultEngineDebounce     = time.Second
	DefaultEngineCooldown     = 24 * time.Hour
	DefaultEngineFetchTimeout = 10 * time.Second

	// Storage defaults
	DefaultStorageBackend           = "sqlite"
	DefaultStorageFilePath          = "data/review-state.json"
	DefaultStorageSQLitePath        = "data/review-state.db"
	DefaultStorageSQLiteCheckpoint  = 5 * time.Minute
	DefaultStorageSQLiteBusyTimeout = 5 * time.Second
	DefaultStoragePostgresPort      = 5432
	DefaultStoragePostgresSSLMode   = "require"
	DefaultStoragePostgresTable     = "vesta_kv_entries"
	DefaultStorageRedisAddr         = "127.0.0.1:6379"
	DefaultStorageRedisPrefix       = "vesta:kv:"
	DefaultMaintenanceSchedule      = "0 3 * * *"

	// Engagements defaults
	DefaultEngagementsBackend     = "sqlite"
	DefaultEngagementsSQLitePath  = "data/engagements.db"
	DefaultEngagementsBusyTimeout = 5 * time.Second

	// Sink defaults
	DefaultSinkType           = "log"
	DefaultSinkWebhookTimeout = 5 * time.Second

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8750"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 15 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "json"
	DefaultMetricsPath   = "/metrics"
)

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values. Negative engine
// intervals are left alone: they mean the guard is disabled.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Engine defaults
	if cfg.Engine.Debounce == 0 {
		cfg.Engine.Debounce = DefaultEngineDebounce
	}
	if cfg.Engine.Cooldown == 0 {
		cfg.Engine.Cooldown = DefaultEngineCooldown
	}
	if cfg.Engine.FetchTimeout == 0 {
		cfg.Engine.FetchTimeout = DefaultEngineFetchTimeout
	}

	// Storage defaults
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultStorageBackend
	}
	if cfg.Storage.File.Path == "" {
		cfg.Storage.File.Path = DefaultStorageFilePath
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = DefaultStorageSQLitePath
	}
	if cfg.Storage.SQLite.CheckpointInterval == 0 {
		cfg.Storage.SQLite.CheckpointInterval = DefaultStorageSQLiteCheckpoint
	}
	if cfg.Storage.SQLite.BusyTimeout == 0 {
		cfg.Storage.SQLite.BusyTimeout = DefaultStorageSQLiteBusyTimeout
	}
	if cfg.Storage.Postgres.Port == 0 {
		cfg.Storage.Postgres.Port = DefaultStoragePostgresPort
	}
	if cfg.Storage.Postgres.SSLMode == "" {
		cfg.Storage.Postgres.SSLMode = DefaultStoragePostgresSSLMode
	}
	if cfg.Storage.Postgres.Table == "" {
		cfg.Storage.Postgres.Table = DefaultStoragePostgresTable
	}
	if cfg.Storage.Redis.Addr == "" {
		cfg.Storage.Redis.Addr = DefaultStorageRedisAddr
	}
	if cfg.Storage.Redis.Prefix == "" {
		cfg.Storage.Redis.Prefix = DefaultStorageRedisPrefix
	}
	if cfg.Storage.Maintenance.Schedule == "" {
		cfg.Storage.Maintenance.Schedule = DefaultMaintenanceSchedule
	}

	// Engagements defaults
	if cfg.Engagements.Backend == "" {
		cfg.Engagements.Backend = DefaultEngagementsBackend
	}
	if cfg.Engagements.SQLite.Path == "" {
		cfg.Engagements.SQLite.Path = DefaultEngagementsSQLitePath
	}
	if cfg.Engagements.SQLite.BusyTimeout == 0 {
		cfg.Engagements.SQLite.BusyTimeout = DefaultEngagementsBusyTimeout
	}

	// Sink defaults
	if cfg.Sink.Type == "" {
		cfg.Sink.Type = DefaultSinkType
	}
	if cfg.Sink.Webhook.Timeout == 0 {
		cfg.Sink.Webhook.Timeout = DefaultSinkWebhookTimeout
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}

// Default returns a configuration populated entirely from defaults. It is
// what the daemon runs with when no configuration file exists.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}
