package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"repairdesk/internal/core"
)

// FileStore keeps the snapshot in a single JSON file. Saves go through a
// temp file plus rename so a crash mid-write never leaves a truncated
// snapshot behind. Loads run the input through core.Normalize, so a file
// written by an older version (or by the browser-era app's export) is
// upgraded transparently.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load() (*core.Snapshot, error) {
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", f.path, err)
	}
	snap, err := core.Normalize(raw, time.Now())
	if err != nil {
		return nil, fmt.Errorf("normalize snapshot %s: %w", f.path, err)
	}
	return snap, nil
}

func (f *FileStore) Save(snap *core.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot %s: %w", f.path, err)
	}
	return nil
}
