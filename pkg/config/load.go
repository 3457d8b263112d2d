package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file at the specified path. Unknown
// keys in the file are rejected. Environment variable overrides are applied
// on top of the file, defaults fill whatever is still unset, and the final
// configuration is validated.
//
// The loading sequence is:
//  1. Read and strictly parse the YAML file
//  2. Apply environment variable overrides
//  3. Apply default values
//  4. Validate the final configuration
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	applyEnvOverrides(cfg)
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse strictly decodes raw YAML into a Config without applying overrides,
// defaults, or validation. An empty document yields a zero Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format FLORENCE_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Engine overrides
	if val := os.Getenv("FLORENCE_ENGINE_DEBOUNCE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Engine.Debounce = d
		}
	}
	if val := os.Getenv("FLORENCE_ENGINE_COOLDOWN"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Engine.Cooldown = d
		}
	}
	if val := os.Getenv("FLORENCE_ENGINE_DEBUG_BYPASS"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Engine.DebugBypass = b
		}
	}
	if val := os.Getenv("FLORENCE_ENGINE_FETCH_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Engine.FetchTimeout = d
		}
	}
	if val := os.Getenv("FLORENCE_ENGINE_STRICT"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Engine.Strict = b
		}
	}

	// Storage overrides
	if val := os.Getenv("FLORENCE_STORAGE_BACKEND"); val != "" {
		cfg.Storage.Backend = val
	}
	if val := os.Getenv("FLORENCE_STORAGE_FILE_PATH"); val != "" {
		cfg.Storage.File.Path = val
	}
	if val := os.Getenv("FLORENCE_STORAGE_SQLITE_PATH"); val != "" {
		cfg.Storage.SQLite.Path = val
	}
	if val := os.Getenv("FLORENCE_STORAGE_POSTGRES_HOST"); val != "" {
		cfg.Storage.Postgres.Host = val
	}
	if val := os.Getenv("FLORENCE_STORAGE_POSTGRES_PORT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Storage.Postgres.Port = i
		}
	}
	if val := os.Getenv("FLORENCE_STORAGE_POSTGRES_DATABASE"); val != "" {
		cfg.Storage.Postgres.Database = val
	}
	if val := os.Getenv("FLORENCE_STORAGE_POSTGRES_USER"); val != "" {
		cfg.Storage.Postgres.User = val
	}
	if val := os.Getenv("FLORENCE_STORAGE_POSTGRES_PASSWORD"); val != "" {
		cfg.Storage.Postgres.Password = val
	}
	if val := os.Getenv("FLORENCE_STORAGE_POSTGRES_SSL_MODE"); val != "" {
		cfg.Storage.Postgres.SSLMode = val
	}
	if val := os.Getenv("FLORENCE_STORAGE_REDIS_ADDR"); val != "" {
		cfg.Storage.Redis.Addr = val
	}
	if val := os.Getenv("FLORENCE_STORAGE_REDIS_PASSWORD"); val != "" {
		cfg.Storage.Redis.Password = val
	}
	if val := os.Getenv("FLORENCE_STORAGE_REDIS_DB"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Storage.Redis.DB = i
		}
	}
	if val := os.Getenv("FLORENCE_STORAGE_MAINTENANCE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Storage.Maintenance.Enabled = b
		}
	}
	if val := os.Getenv("FLORENCE_STORAGE_MAINTENANCE_SCHEDULE"); val != "" {
		cfg.Storage.Maintenance.Schedule = val
	}

	// Engagements overrides
	if val := os.Getenv("FLORENCE_ENGAGEMENTS_BACKEND"); val != "" {
		cfg.Engagements.Backend = val
	}
	if val := os.Getenv("FLORENCE_ENGAGEMENTS_SQLITE_PATH"); val != "" {
		cfg.Engagements.SQLite.Path = val
	}

	// Identity overrides
	if val := os.Getenv("FLORENCE_IDENTITY_USER_ID"); val != "" {
		cfg.Identity.UserID = val
	}

	// Sink overrides
	if val := os.Getenv("FLORENCE_SINK_TYPE"); val != "" {
		cfg.Sink.Type = val
	}
	if val := os.Getenv("FLORENCE_SINK_WEBHOOK_URL"); val != "" {
		cfg.Sink.Webhook.URL = val
	}
	if val := os.Getenv("FLORENCE_SINK_WEBHOOK_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Sink.Webhook.Timeout = d
		}
	}

	// Server overrides
	if val := os.Getenv("FLORENCE_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("FLORENCE_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("FLORENCE_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("FLORENCE_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}
	if val := os.Getenv("FLORENCE_SERVER_ALLOW_CLEAR"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Server.AllowClear = b
		}
	}

	// Telemetry overrides
	if val := os.Getenv("FLORENCE_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("FLORENCE_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("FLORENCE_TELEMETRY_LOGGING_ADD_SOURCE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Logging.AddSource = b
		}
	}
	if val := os.Getenv("FLORENCE_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
}
