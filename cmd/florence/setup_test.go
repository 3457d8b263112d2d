package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"florence-hq/vesta/pkg/cli"
	"florence-hq/vesta/pkg/config"
	"florence-hq/vesta/pkg/review"
)

// writeTestConfig writes a file-backed config into a temp dir and points the
// global --config flag at it. State written by one command invocation stays
// visible to the next, like separate CLI runs against the same deployment.
func writeTestConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "florence.yaml")
	content := fmt.Sprintf(`storage:
  backend: file
  file:
    path: '%s'
engagements:
  backend: memory
identity:
  user_id: user-1
`, filepath.Join(dir, "state.json"))

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfgFile = path
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := loadConfig()
	if err == nil {
		t.Fatal("loadConfig() with missing file should return error")
	}
	if code := cli.ExitCode(err); code != cli.ExitConfig {
		t.Errorf("ExitCode = %d, want %d", code, cli.ExitConfig)
	}
}

func TestOpenStateStore(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		storage config.StorageConfig
		wantErr bool
	}{
		{
			name:    "memory",
			storage: config.StorageConfig{Backend: "memory"},
		},
		{
			name: "file",
			storage: config.StorageConfig{
				Backend: "file",
				File:    config.FileStorageConfig{Path: filepath.Join(dir, "state.json")},
			},
		},
		{
			name: "sqlite",
			storage: config.StorageConfig{
				Backend: "sqlite",
				SQLite:  config.SQLiteStorageConfig{Path: filepath.Join(dir, "state.db")},
			},
		},
		{
			name:    "unsupported",
			storage: config.StorageConfig{Backend: "etcd"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Storage = tt.storage

			store, err := openStateStore(context.Background(), cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("openStateStore() should return error")
				}
				return
			}
			if err != nil {
				t.Fatalf("openStateStore() returned error: %v", err)
			}
			store.Close()
		})
	}
}

func TestOpenEngagementSourceMemory(t *testing.T) {
	cfg := config.Default()
	cfg.Engagements.Backend = "memory"

	source, err := openEngagementSource(cfg)
	if err != nil {
		t.Fatalf("openEngagementSource() returned error: %v", err)
	}
	if err := source.Close(); err != nil {
		t.Errorf("Close() returned error: %v", err)
	}
}

func TestOpenEngagementSourceSQLite(t *testing.T) {
	cfg := config.Default()
	cfg.Engagements.Backend = "sqlite"
	cfg.Engagements.SQLite.Path = filepath.Join(t.TempDir(), "engagements.db")
	cfg.Identity.UserID = "user-1"

	source, err := openEngagementSource(cfg)
	if err != nil {
		t.Fatalf("openEngagementSource() returned error: %v", err)
	}
	defer source.Close()

	engs, err := source.FetchForInitiator(context.Background())
	if err != nil {
		t.Fatalf("FetchForInitiator() returned error: %v", err)
	}
	if len(engs) != 0 {
		t.Errorf("FetchForInitiator() returned %d engagements, want 0", len(engs))
	}
}

func TestOpenEngagementSourceUnsupported(t *testing.T) {
	cfg := config.Default()
	cfg.Engagements.Backend = "ldap"

	if _, err := openEngagementSource(cfg); err == nil {
		t.Error("openEngagementSource() with unsupported backend should return error")
	}
}

func TestBuildSink(t *testing.T) {
	cfg := config.Default()

	sink, err := buildSink(cfg, nil)
	if err != nil {
		t.Fatalf("buildSink() returned error: %v", err)
	}
	if _, ok := sink.(*review.LogSink); !ok {
		t.Errorf("buildSink(log) = %T, want *review.LogSink", sink)
	}

	cfg.Sink.Type = "webhook"
	cfg.Sink.Webhook.URL = "http://127.0.0.1:9/hook"
	sink, err = buildSink(cfg, nil)
	if err != nil {
		t.Fatalf("buildSink() returned error: %v", err)
	}
	if _, ok := sink.(*review.WebhookSink); !ok {
		t.Errorf("buildSink(webhook) = %T, want *review.WebhookSink", sink)
	}

	cfg.Sink.Type = "carrier-pigeon"
	if _, err := buildSink(cfg, nil); err == nil {
		t.Error("buildSink() with unsupported type should return error")
	}
}

func TestEngineConfigMapsDisabledIntervals(t *testing.T) {
	// The file spells "guard disabled" as negative; the engine as zero
	cfg := config.Default()
	cfg.Engine.Debounce = -1
	cfg.Engine.Cooldown = -1

	got := engineConfig(cfg)
	if got.Debounce != 0 {
		t.Errorf("Debounce = %v, want 0", got.Debounce)
	}
	if got.Cooldown != 0 {
		t.Errorf("Cooldown = %v, want 0", got.Cooldown)
	}
}

func TestEngineConfigPassthrough(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.Debounce = 2 * time.Second
	cfg.Engine.Cooldown = 48 * time.Hour
	cfg.Engine.FetchTimeout = 3 * time.Second
	cfg.Engine.DebugBypass = true
	cfg.Engine.Strict = true

	got := engineConfig(cfg)
	if got.Debounce != 2*time.Second {
		t.Errorf("Debounce = %v, want 2s", got.Debounce)
	}
	if got.Cooldown != 48*time.Hour {
		t.Errorf("Cooldown = %v, want 48h", got.Cooldown)
	}
	if got.FetchTimeout != 3*time.Second {
		t.Errorf("FetchTimeout = %v, want 3s", got.FetchTimeout)
	}
	if !got.DebugBypass {
		t.Error("DebugBypass should carry over")
	}
	if !got.Strict {
		t.Error("Strict should carry over")
	}
}

func TestOpenEngineRoundTrip(t *testing.T) {
	writeTestConfig(t)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() returned error: %v", err)
	}

	eng, err := openEngine(context.Background(), cfg)
	if err != nil {
		t.Fatalf("openEngine() returned error: %v", err)
	}
	defer eng.Close()

	st := eng.State()
	if st.Phase != review.PhaseIdle {
		t.Errorf("Phase = %q, want %q", st.Phase, review.PhaseIdle)
	}
	if !st.Gate.LastPromptAt.IsZero() {
		t.Errorf("LastPromptAt = %v, want zero", st.Gate.LastPromptAt)
	}
}
