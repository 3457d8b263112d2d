package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore implements Store using a single JSON document on disk.
// It is intended for single-process deployments that need state to survive
// restarts without running a database: the whole document is loaded at open
// and rewritten atomically (temp file + rename) on every mutation.
//
// FileStore is thread-safe within one process. It does not coordinate
// between processes; two processes writing the same file will lose updates.
type FileStore struct {
	path string
	mu   sync.RWMutex
	doc  fileDoc
}

// fileDoc is the on-disk document. Times are stored as RFC 3339 strings so
// the file stays readable and diffable.
type fileDoc struct {
	Times map[string]string   `json:"times,omitempty"`
	Sets  map[string][]string `json:"sets,omitempty"`
	Bools map[string]bool     `json:"bools,omitempty"`
}

// NewFileStore opens (or creates) the JSON store at path.
// The parent directory must exist. A missing file starts an empty store;
// an unreadable or malformed file is an error.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	store := &FileStore{
		path: path,
		doc:  newFileDoc(),
	}

	if err := store.load(); err != nil {
		return nil, err
	}

	return store, nil
}

func newFileDoc() fileDoc {
	return fileDoc{
		Times: make(map[string]string),
		Sets:  make(map[string][]string),
		Bools: make(map[string]bool),
	}
}

// load reads the document from disk. A missing file is not an error.
func (f *FileStore) load() error {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read state file: %w", err)
	}

	var doc fileDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("failed to parse state file %s: %w", f.path, err)
	}

	if doc.Times == nil {
		doc.Times = make(map[string]string)
	}
	if doc.Sets == nil {
		doc.Sets = make(map[string][]string)
	}
	if doc.Bools == nil {
		doc.Bools = make(map[string]bool)
	}

	f.doc = doc
	return nil
}

// persistLocked writes the document to a temp file in the same directory
// and renames it into place. Caller must hold the write lock.
func (f *FileStore) persistLocked() error {
	b, err := json.MarshalIndent(f.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	return nil
}

// GetTime retrieves the timestamp stored under key.
func (f *FileStore) GetTime(ctx context.Context, key string) (time.Time, error) {
	if key == "" {
		return time.Time{}, fmt.Errorf("key cannot be empty")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	raw, exists := f.doc.Times[key]
	if !exists {
		return time.Time{}, nil
	}

	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt timestamp for key %q: %w", key, err)
	}
	return t, nil
}

// SetTime persists a timestamp under key.
func (f *FileStore) SetTime(ctx context.Context, key string, t time.Time) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleteLocked(key)
	f.doc.Times[key] = t.Format(timeLayout)
	return f.persistLocked()
}

// GetStringSet retrieves the string set stored under key.
func (f *FileStore) GetStringSet(ctx context.Context, key string) ([]string, error) {
	if key == "" {
		return nil, fmt.Errorf("key cannot be empty")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	set, exists := f.doc.Sets[key]
	if !exists {
		return nil, nil
	}

	out := make([]string, len(set))
	copy(out, set)
	return out, nil
}

// SetStringSet persists a string set under key.
func (f *FileStore) SetStringSet(ctx context.Context, key string, vals []string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleteLocked(key)
	f.doc.Sets[key] = dedupe(vals)
	return f.persistLocked()
}

// GetBool retrieves the boolean stored under key.
func (f *FileStore) GetBool(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, fmt.Errorf("key cannot be empty")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.doc.Bools[key], nil
}

// SetBool persists a boolean under key.
func (f *FileStore) SetBool(ctx context.Context, key string, v bool) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleteLocked(key)
	f.doc.Bools[key] = v
	return f.persistLocked()
}

// Delete removes the value stored under key.
func (f *FileStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleteLocked(key)
	return f.persistLocked()
}

// deleteLocked removes key from every section. A key holds one kind of
// value, so clearing all sections keeps writes of a new kind consistent.
// Caller must hold the write lock.
func (f *FileStore) deleteLocked(key string) {
	delete(f.doc.Times, key)
	delete(f.doc.Sets, key)
	delete(f.doc.Bools, key)
}

// Compact rewrites the document in place, dropping any slack left by
// previous writes. Live entries are never removed.
func (f *FileStore) Compact(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.persistLocked()
}

// Close releases any resources held by the store.
func (f *FileStore) Close() error {
	return nil
}

// Path returns the location of the backing file.
func (f *FileStore) Path() string {
	return f.path
}
