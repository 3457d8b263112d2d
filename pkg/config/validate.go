package config

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateEngine(&cfg.Engine)...)
	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateEngagements(&cfg.Engagements)...)
	errs = append(errs, validateSink(&cfg.Sink)...)
	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateEngine validates engine configuration. Negative debounce and
// cooldown values are legal: they disable the corresponding guard.
func validateEngine(cfg *EngineConfig) []FieldError {
	var errs []FieldError

	if cfg.FetchTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "engine.fetch_timeout",
			Message: "fetch timeout must be positive",
		})
	}

	return errs
}

// validateStorage validates storage configuration.
func validateStorage(cfg *StorageConfig) []FieldError {
	var errs []FieldError

	validBackends := map[string]bool{"memory": true, "file": true, "sqlite": true, "postgres": true, "redis": true}
	if cfg.Backend == "" {
		errs = append(errs, FieldError{
			Field:   "storage.backend",
			Message: "backend is required",
		})
	} else if !validBackends[cfg.Backend] {
		errs = append(errs, FieldError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'memory', 'file', 'sqlite', 'postgres', or 'redis'", cfg.Backend),
		})
	}

	// Validate backend-specific configuration
	switch cfg.Backend {
	case "file":
		if cfg.File.Path == "" {
			errs = append(errs, FieldError{
				Field:   "storage.file.path",
				Message: "file path is required when backend is 'file'",
			})
		}
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "storage.sqlite.path",
				Message: "SQLite path is required when backend is 'sqlite'",
			})
		}
		if cfg.SQLite.CheckpointInterval < 0 {
			errs = append(errs, FieldError{
				Field:   "storage.sqlite.checkpoint_interval",
				Message: "checkpoint interval must be positive",
			})
		}
		if cfg.SQLite.BusyTimeout < 0 {
			errs = append(errs, FieldError{
				Field:   "storage.sqlite.busy_timeout",
				Message: "busy timeout must be positive",
			})
		}
	case "postgres":
		if cfg.Postgres.Host == "" {
			errs = append(errs, FieldError{
				Field:   "storage.postgres.host",
				Message: "PostgreSQL host is required when backend is 'postgres'",
			})
		}
		if cfg.Postgres.Port < 1 || cfg.Postgres.Port > 65535 {
			errs = append(errs, FieldError{
				Field:   "storage.postgres.port",
				Message: "PostgreSQL port must be between 1 and 65535",
			})
		}
		if cfg.Postgres.Database == "" {
			errs = append(errs, FieldError{
				Field:   "storage.postgres.database",
				Message: "PostgreSQL database is required when backend is 'postgres'",
			})
		}
		if cfg.Postgres.User == "" {
			errs = append(errs, FieldError{
				Field:   "storage.postgres.user",
				Message: "PostgreSQL user is required when backend is 'postgres'",
			})
		}
		// Password can be empty if using other auth methods
		validSSLModes := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
		if !validSSLModes[cfg.Postgres.SSLMode] {
			errs = append(errs, FieldError{
				Field:   "storage.postgres.ssl_mode",
				Message: fmt.Sprintf("invalid SSL mode %q: must be 'disable', 'require', 'verify-ca', or 'verify-full'", cfg.Postgres.SSLMode),
			})
		}
	case "redis":
		if cfg.Redis.Addr == "" {
			errs = append(errs, FieldError{
				Field:   "storage.redis.addr",
				Message: "Redis address is required when backend is 'redis'",
			})
		}
		if cfg.Redis.DB < 0 {
			errs = append(errs, FieldError{
				Field:   "storage.redis.db",
				Message: "Redis database must be non-negative",
			})
		}
	}

	// Validate maintenance configuration
	if cfg.Maintenance.Enabled && cfg.Maintenance.Schedule == "" {
		errs = append(errs, FieldError{
			Field:   "storage.maintenance.schedule",
			Message: "schedule is required when maintenance is enabled",
		})
	}

	return errs
}

// validateEngagements validates engagement source configuration.
func validateEngagements(cfg *EngagementsConfig) []FieldError {
	var errs []FieldError

	validBackends := map[string]bool{"memory": true, "sqlite": true}
	if cfg.Backend == "" {
		errs = append(errs, FieldError{
			Field:   "engagements.backend",
			Message: "backend is required",
		})
	} else if !validBackends[cfg.Backend] {
		errs = append(errs, FieldError{
			Field:   "engagements.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'memory' or 'sqlite'", cfg.Backend),
		})
	}

	if cfg.Backend == "sqlite" {
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "engagements.sqlite.path",
				Message: "SQLite path is required when backend is 'sqlite'",
			})
		}
		if cfg.SQLite.BusyTimeout < 0 {
			errs = append(errs, FieldError{
				Field:   "engagements.sqlite.busy_timeout",
				Message: "busy timeout must be positive",
			})
		}
	}

	return errs
}

// validateSink validates sink configuration.
func validateSink(cfg *SinkConfig) []FieldError {
	var errs []FieldError

	validTypes := map[string]bool{"log": true, "webhook": true}
	if cfg.Type == "" {
		errs = append(errs, FieldError{
			Field:   "sink.type",
			Message: "type is required",
		})
	} else if !validTypes[cfg.Type] {
		errs = append(errs, FieldError{
			Field:   "sink.type",
			Message: fmt.Sprintf("invalid type %q: must be 'log' or 'webhook'", cfg.Type),
		})
	}

	if cfg.Type == "webhook" {
		if cfg.Webhook.URL == "" {
			errs = append(errs, FieldError{
				Field:   "sink.webhook.url",
				Message: "URL is required when sink type is 'webhook'",
			})
		} else if u, err := url.Parse(cfg.Webhook.URL); err != nil {
			errs = append(errs, FieldError{
				Field:   "sink.webhook.url",
				Message: fmt.Sprintf("invalid URL format: %v", err),
			})
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, FieldError{
				Field:   "sink.webhook.url",
				Message: fmt.Sprintf("invalid URL scheme %q: must be 'http' or 'https'", u.Scheme),
			})
		}
		if cfg.Webhook.Timeout < 0 {
			errs = append(errs, FieldError{
				Field:   "sink.webhook.timeout",
				Message: "timeout must be positive",
			})
		}
	}

	return errs
}

// validateServer validates admin server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "shutdown timeout must be positive",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Path == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path is required",
		})
	} else if cfg.Metrics.Path[0] != '/' {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	return errs
}
