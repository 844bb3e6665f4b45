// Package storage persists the last good snapshot so a restart can serve
// data before the first refresh cycle completes.
package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"trading_dashboard/internal/models"
)

// LoadSnapshot reads the persisted snapshot. A missing file is not an error;
// it returns ok=false and the caller starts cold.
func LoadSnapshot(path string) (models.Snapshot, bool, error) {
	var s models.Snapshot

	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, false, nil
	}
	if err != nil {
		return s, false, err
	}

	if err := json.Unmarshal(b, &s); err != nil {
		return s, false, fmt.Errorf("corrupt snapshot file: %w", err)
	}
	return s, true, nil
}

// SaveSnapshot writes the snapshot with an atomic replace:
// temp file → sync → rename. A crash mid-write never leaves a torn file.
func SaveSnapshot(path string, s models.Snapshot) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}

	if _, err := f.Write(b); err != nil {
		f.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace snapshot file: %w", err)
	}
	return nil
}
