package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate_DefaultConfigIsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "non-positive fetch timeout",
			mutate:    func(c *Config) { c.Engine.FetchTimeout = 0 },
			wantField: "engine.fetch_timeout",
		},
		{
			name:      "unknown storage backend",
			mutate:    func(c *Config) { c.Storage.Backend = "mysql" },
			wantField: "storage.backend",
		},
		{
			name:      "missing storage backend",
			mutate:    func(c *Config) { c.Storage.Backend = "" },
			wantField: "storage.backend",
		},
		{
			name: "file backend without path",
			mutate: func(c *Config) {
				c.Storage.Backend = "file"
				c.Storage.File.Path = ""
			},
			wantField: "storage.file.path",
		},
		{
			name: "sqlite backend without path",
			mutate: func(c *Config) {
				c.Storage.Backend = "sqlite"
				c.Storage.SQLite.Path = ""
			},
			wantField: "storage.sqlite.path",
		},
		{
			name: "postgres backend without host",
			mutate: func(c *Config) {
				c.Storage.Backend = "postgres"
				c.Storage.Postgres.Database = "vesta"
				c.Storage.Postgres.User = "vesta"
			},
			wantField: "storage.postgres.host",
		},
		{
			name: "postgres port out of range",
			mutate: func(c *Config) {
				c.Storage.Backend = "postgres"
				c.Storage.Postgres.Host = "localhost"
				c.Storage.Postgres.Port = 70000
				c.Storage.Postgres.Database = "vesta"
				c.Storage.Postgres.User = "vesta"
			},
			wantField: "storage.postgres.port",
		},
		{
			name: "postgres invalid ssl mode",
			mutate: func(c *Config) {
				c.Storage.Backend = "postgres"
				c.Storage.Postgres.Host = "localhost"
				c.Storage.Postgres.Database = "vesta"
				c.Storage.Postgres.User = "vesta"
				c.Storage.Postgres.SSLMode = "perhaps"
			},
			wantField: "storage.postgres.ssl_mode",
		},
		{
			name: "redis backend without addr",
			mutate: func(c *Config) {
				c.Storage.Backend = "redis"
				c.Storage.Redis.Addr = ""
			},
			wantField: "storage.redis.addr",
		},
		{
			name: "maintenance enabled without schedule",
			mutate: func(c *Config) {
				c.Storage.Maintenance.Enabled = true
				c.Storage.Maintenance.Schedule = ""
			},
			wantField: "storage.maintenance.schedule",
		},
		{
			name:      "unknown engagements backend",
			mutate:    func(c *Config) { c.Engagements.Backend = "oracle" },
			wantField: "engagements.backend",
		},
		{
			name: "engagements sqlite without path",
			mutate: func(c *Config) {
				c.Engagements.Backend = "sqlite"
				c.Engagements.SQLite.Path = ""
			},
			wantField: "engagements.sqlite.path",
		},
		{
			name:      "unknown sink type",
			mutate:    func(c *Config) { c.Sink.Type = "carrier-pigeon" },
			wantField: "sink.type",
		},
		{
			name:      "webhook sink without URL",
			mutate:    func(c *Config) { c.Sink.Type = "webhook" },
			wantField: "sink.webhook.url",
		},
		{
			name: "webhook sink with bad scheme",
			mutate: func(c *Config) {
				c.Sink.Type = "webhook"
				c.Sink.Webhook.URL = "ftp://hooks.example.com"
			},
			wantField: "sink.webhook.url",
		},
		{
			name: "webhook sink with negative timeout",
			mutate: func(c *Config) {
				c.Sink.Type = "webhook"
				c.Sink.Webhook.URL = "https://hooks.example.com"
				c.Sink.Webhook.Timeout = -time.Second
			},
			wantField: "sink.webhook.timeout",
		},
		{
			name:      "missing listen address",
			mutate:    func(c *Config) { c.Server.ListenAddress = "" },
			wantField: "server.listen_address",
		},
		{
			name:      "negative shutdown timeout",
			mutate:    func(c *Config) { c.Server.ShutdownTimeout = -time.Second },
			wantField: "server.shutdown_timeout",
		},
		{
			name:      "unknown logging level",
			mutate:    func(c *Config) { c.Telemetry.Logging.Level = "verbose" },
			wantField: "telemetry.logging.level",
		},
		{
			name:      "unknown logging format",
			mutate:    func(c *Config) { c.Telemetry.Logging.Format = "xml" },
			wantField: "telemetry.logging.format",
		},
		{
			name:      "metrics path without leading slash",
			mutate:    func(c *Config) { c.Telemetry.Metrics.Path = "metrics" },
			wantField: "telemetry.metrics.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}

			verr, ok := err.(ValidationError)
			if !ok {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}

			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected error on field %q, got: %v", tt.wantField, verr)
			}
		})
	}
}

func TestValidate_NegativeIntervalsAreLegal(t *testing.T) {
	cfg := Default()
	cfg.Engine.Debounce = -1
	cfg.Engine.Cooldown = -1

	if err := Validate(cfg); err != nil {
		t.Fatalf("negative intervals disable guards and should validate, got: %v", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Storage.Backend = "mysql"
	cfg.Sink.Type = "carrier-pigeon"
	cfg.Telemetry.Logging.Level = "verbose"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}

	verr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors) != 3 {
		t.Fatalf("expected 3 field errors, got %d: %v", len(verr.Errors), verr)
	}
}

func TestValidationError_Formatting(t *testing.T) {
	empty := ValidationError{}
	if got := empty.Error(); got != "configuration validation failed" {
		t.Errorf("unexpected empty error message: %q", got)
	}

	single := ValidationError{Errors: []FieldError{
		{Field: "sink.type", Message: "type is required"},
	}}
	if got := single.Error(); got != "configuration validation failed: sink.type: type is required" {
		t.Errorf("unexpected single error message: %q", got)
	}

	multi := ValidationError{Errors: []FieldError{
		{Field: "sink.type", Message: "type is required"},
		{Field: "storage.backend", Message: "backend is required"},
	}}
	got := multi.Error()
	if !strings.Contains(got, "2 errors") {
		t.Errorf("expected error count in message, got: %q", got)
	}
	if !strings.Contains(got, "sink.type") || !strings.Contains(got, "storage.backend") {
		t.Errorf("expected both field paths in message, got: %q", got)
	}
}
