package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"florence-hq/vesta/pkg/cli"
	"florence-hq/vesta/pkg/config"
	"florence-hq/vesta/pkg/kvstore"
	"florence-hq/vesta/pkg/review"
	"florence-hq/vesta/pkg/review/gate"
	"florence-hq/vesta/pkg/server"
	"florence-hq/vesta/pkg/telemetry/health"
	"florence-hq/vesta/pkg/telemetry/logging"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Florence review daemon",
	Long: `Start the Florence review daemon with the specified configuration.

The daemon hosts the review decision engine behind an admin HTTP API:
decision cycles are triggered over HTTP, and the skip registry, lifetime
latch, and engine state are exposed for operator tooling.

Examples:
  # Start with default config
  florence run

  # Start with custom config
  florence run --config /etc/florence/florence.yaml

  # Override listen address
  florence run --listen 0.0.0.0:8750

  # Validate config without starting the daemon
  florence run --dry-run`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the daemon")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	logger, levelVar, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Florence Vesta v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Persisted gate and skip state
	store, err := openStateStore(ctx, cfg)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to open state store: %w", err))
	}
	fmt.Printf("✓ State store ready (%s)\n", cfg.Storage.Backend)

	// Engagement source for candidate selection
	source, err := openEngagementSource(cfg)
	if err != nil {
		store.Close()
		return cli.NewCommandError("run", fmt.Errorf("failed to open engagement source: %w", err))
	}
	defer source.Close()
	fmt.Printf("✓ Engagement source ready (%s)\n", cfg.Engagements.Backend)

	sink, err := buildSink(cfg, logger)
	if err != nil {
		store.Close()
		return cli.NewCommandError("run", err)
	}

	// The engine owns the store from here and closes it on Close.
	eng, err := review.New(engineConfig(cfg), store, source, sink,
		review.WithLogger(logger),
		review.WithIdentity(review.StaticIdentity(cfg.Identity.UserID)),
	)
	if err != nil {
		store.Close()
		return cli.NewCommandError("run", fmt.Errorf("failed to create engine: %w", err))
	}
	defer eng.Close()
	fmt.Println("✓ Review engine initialized")

	// Scheduled storage compaction
	if cfg.Storage.Maintenance.Enabled {
		maintainer := kvstore.NewMaintainer(store, cfg.Storage.Maintenance.Schedule, logger)
		if err := maintainer.Start(ctx); err != nil {
			slog.Warn("failed to start storage maintainer", "error", err)
		} else {
			defer maintainer.Stop()
			if next := maintainer.NextRun(); next != nil {
				slog.Debug("storage maintenance scheduled", "next_run", next)
			}
			fmt.Println("✓ Storage maintenance scheduled")
		}
	}

	// Readiness probes the live storage path.
	checker := health.New(0)
	checker.RegisterCheck("storage", func(ctx context.Context) error {
		_, err := store.GetTime(ctx, gate.DefaultPromptedAtKey)
		return err
	})

	srv := server.NewServer(&cfg.Server, cfg.Telemetry.Metrics.Path, eng, checker, logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx)
	}()

	// Live reload: engine intervals and log level follow the file.
	watcher, err := config.NewWatcher(cfgFile, logger)
	if err != nil {
		slog.Warn("config watcher unavailable, live reload disabled", "error", err)
	} else {
		go func() {
			if err := watcher.Watch(ctx, func(next *config.Config) {
				if err := eng.UpdateConfig(engineConfig(next)); err != nil {
					slog.Error("failed to apply reloaded engine config", "error", err)
				}
				if level, err := logging.ParseLevel(next.Telemetry.Logging.Level); err == nil {
					levelVar.Set(level)
				}
			}); err != nil {
				slog.Error("config watcher stopped", "error", err)
			}
		}()
		defer watcher.Stop()
	}

	fmt.Println()
	fmt.Printf("✓ Admin server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/healthz\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		return nil
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		// Cancellation makes Start shut down within the configured timeout.
		if err := <-errChan; err != nil {
			slog.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}

		fmt.Println("✓ Daemon stopped")
		return nil
	}
}
