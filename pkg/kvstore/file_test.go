package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("Failed to create file store: %v", err)
	}

	ctx := context.Background()
	promptedAt := time.Date(2026, 5, 2, 17, 30, 0, 0, time.UTC)

	if err := store.SetTime(ctx, "review.last_prompt_at", promptedAt); err != nil {
		t.Fatalf("SetTime failed: %v", err)
	}
	if err := store.SetStringSet(ctx, "review.skipped", []string{"eng-1"}); err != nil {
		t.Fatalf("SetStringSet failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	at, err := reopened.GetTime(ctx, "review.last_prompt_at")
	if err != nil {
		t.Fatalf("GetTime failed: %v", err)
	}
	if !at.Equal(promptedAt) {
		t.Errorf("Expected %v, got %v", promptedAt, at)
	}

	set, err := reopened.GetStringSet(ctx, "review.skipped")
	if err != nil {
		t.Fatalf("GetStringSet failed: %v", err)
	}
	if len(set) != 1 || set[0] != "eng-1" {
		t.Errorf("Expected [eng-1], got %v", set)
	}
}

func TestFileStore_MissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist-yet.json")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("Failed to create file store: %v", err)
	}
	defer store.Close()

	at, err := store.GetTime(context.Background(), "review.last_prompt_at")
	if err != nil {
		t.Fatalf("GetTime failed: %v", err)
	}
	if !at.IsZero() {
		t.Errorf("Expected zero time from fresh store, got %v", at)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	if _, err := NewFileStore(path); err == nil {
		t.Error("Expected error opening corrupt state file")
	}
}

func TestFileStore_EmptyPath(t *testing.T) {
	if _, err := NewFileStore(""); err == nil {
		t.Error("Expected error for empty path")
	}
}

func TestFileStore_WriteIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("Failed to create file store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.SetBool(ctx, "review.debug_bypass", true); err != nil {
		t.Fatalf("SetBool failed: %v", err)
	}

	// No temp files should linger after a successful write.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Expected only the state file, found %v", names)
	}
}

func TestFileStore_Compact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("Failed to create file store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.SetStringSet(ctx, "review.skipped", []string{"eng-1", "eng-2"}); err != nil {
		t.Fatalf("SetStringSet failed: %v", err)
	}

	if err := store.Compact(ctx); err != nil {
		t.Fatalf("Compact failed: %v", err)
	}

	set, err := store.GetStringSet(ctx, "review.skipped")
	if err != nil {
		t.Fatalf("GetStringSet failed: %v", err)
	}
	if len(set) != 2 {
		t.Errorf("Compact dropped live entries: %v", set)
	}
}
