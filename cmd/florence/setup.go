package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"florence-hq/vesta/pkg/cli"
	"florence-hq/vesta/pkg/config"
	"florence-hq/vesta/pkg/engagement"
	"florence-hq/vesta/pkg/kvstore"
	"florence-hq/vesta/pkg/review"
)

// loadConfig loads the file given with --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg, nil
}

// openStateStore opens the kv store named by the storage configuration. The
// caller owns the store unless it is handed to an engine, which closes it on
// engine Close.
func openStateStore(ctx context.Context, cfg *config.Config) (kvstore.Store, error) {
	switch cfg.Storage.Backend {
	case "memory":
		return kvstore.NewMemoryStore(), nil
	case "file":
		return kvstore.NewFileStore(cfg.Storage.File.Path)
	case "sqlite":
		return kvstore.NewSQLiteStoreWithConfig(kvstore.SQLiteStoreConfig{
			DBPath:             cfg.Storage.SQLite.Path,
			CheckpointInterval: cfg.Storage.SQLite.CheckpointInterval,
			BusyTimeout:        cfg.Storage.SQLite.BusyTimeout,
		})
	case "postgres":
		return kvstore.NewPostgresStore(kvstore.PostgresStoreConfig{
			DSN:   cfg.Storage.Postgres.DSN(),
			Table: cfg.Storage.Postgres.Table,
		})
	case "redis":
		return kvstore.NewRedisStore(ctx, kvstore.RedisStoreConfig{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
			Prefix:   cfg.Storage.Redis.Prefix,
		})
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Storage.Backend)
	}
}

// engagementSource is an engagement store plus the Close the daemon calls on
// shutdown.
type engagementSource interface {
	review.EngagementStore
	io.Closer
}

// memorySource adapts the in-memory store, which has nothing to close.
type memorySource struct {
	*engagement.MemoryStore
}

func (memorySource) Close() error { return nil }

// openEngagementSource opens the engagement source named by the
// configuration.
func openEngagementSource(cfg *config.Config) (engagementSource, error) {
	switch cfg.Engagements.Backend {
	case "memory":
		return memorySource{engagement.NewMemoryStore()}, nil
	case "sqlite":
		return engagement.NewSQLiteStore(engagement.SQLiteStoreConfig{
			Path:        cfg.Engagements.SQLite.Path,
			InitiatorID: cfg.Identity.UserID,
			BusyTimeout: cfg.Engagements.SQLite.BusyTimeout,
		})
	default:
		return nil, fmt.Errorf("unsupported engagements backend: %s", cfg.Engagements.Backend)
	}
}

// buildSink builds the presentation sink named by the configuration.
func buildSink(cfg *config.Config, logger *slog.Logger) (review.PresentationSink, error) {
	switch cfg.Sink.Type {
	case "log":
		return review.NewLogSink(logger), nil
	case "webhook":
		return review.NewWebhookSink(cfg.Sink.Webhook.URL, cfg.Sink.Webhook.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported sink type: %s", cfg.Sink.Type)
	}
}

// engineConfig maps the daemon configuration onto the engine's config. The
// file spells "guard disabled" as a negative interval; the engine spells it
// as zero.
func engineConfig(cfg *config.Config) *review.Config {
	out := &review.Config{
		Debounce:     cfg.Engine.Debounce,
		Cooldown:     cfg.Engine.Cooldown,
		DebugBypass:  cfg.Engine.DebugBypass,
		FetchTimeout: cfg.Engine.FetchTimeout,
		Strict:       cfg.Engine.Strict,
	}
	if out.Debounce < 0 {
		out.Debounce = 0
	}
	if out.Cooldown < 0 {
		out.Cooldown = 0
	}
	return out
}

// openEngine builds an engine over the configured state store for operator
// commands. No engagement source is opened: these commands only touch
// persisted gate and skip state, so a throwaway in-memory store stands in.
// The engine owns the kv store and closes it on Close.
func openEngine(ctx context.Context, cfg *config.Config) (*review.Engine, error) {
	store, err := openStateStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	eng, err := review.New(engineConfig(cfg), store, engagement.NewMemoryStore(), review.NewLogSink(nil))
	if err != nil {
		store.Close()
		return nil, err
	}
	return eng, nil
}
