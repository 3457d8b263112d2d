// Package config provides configuration management for the Florence review
// daemon.
//
// This package handles loading, validating, and watching configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with strict parsing, comprehensive validation, and
// sensible defaults.
//
// # Configuration Loading
//
//	cfg, err := config.Load("florence.yaml")
//
// Unknown keys in the file are rejected so that typos surface at startup
// instead of silently falling back to defaults. When no file exists,
// config.Default() yields a fully-defaulted configuration.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention FLORENCE_SECTION_FIELD
// and take precedence over file values. For example:
//
//   - FLORENCE_ENGINE_COOLDOWN overrides engine.cooldown
//   - FLORENCE_STORAGE_BACKEND overrides storage.backend
//   - FLORENCE_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides
// earlier):
//
//  1. Values from the YAML file
//  2. Environment variable overrides
//  3. Default values filling remaining zero fields
//  4. Validation (fails fast if invalid)
//
// # Disabled Guards
//
// The engine treats a zero debounce or cooldown as "guard disabled". Since
// an omitted YAML field is indistinguishable from an explicit zero, the file
// layer uses negative values to disable a guard:
//
//	engine:
//	  cooldown: -1s   # prompt every eligible session
//
// Zero values are replaced by defaults; negative values pass through and are
// mapped to "disabled" when the engine is constructed.
//
// # Validation
//
// Validation errors include field paths and helpful messages:
//
//	configuration validation failed with 2 errors:
//	  - storage.backend: invalid backend "mysql": must be 'memory', 'file', 'sqlite', 'postgres', or 'redis'
//	  - sink.webhook.url: URL is required when sink type is 'webhook'
//
// # Hot Reload
//
// A Watcher observes the configuration file and delivers reloaded
// configurations to a callback after a debounce interval. Changes that fail
// to parse or validate are logged and skipped.
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	engine:
//	  cooldown: 24h
//
//	storage:
//	  backend: "sqlite"
//	  sqlite:
//	    path: "data/review-state.db"
//
//	identity:
//	  user_id: "user-206a"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
package config
