// Package checkpoint persists the sync watermark between runs.
package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=store.go Store

const (
	// IndexFileName is the name of the checkpoint file inside the snapshot root
	IndexFileName = "_index.json"
)

// Checkpoint is the single persisted record
type Checkpoint struct {
	// TS is the publish timestamp (ms since epoch) of the newest artifact seen by the last completed run
	TS int64 `json:"ts"`
}

// Store defines the interface for watermark persistence
type Store interface {
	// Read returns the persisted watermark. A missing, unreadable or malformed
	// checkpoint reads as 0 so the next run starts from scratch.
	Read(ctx context.Context) int64

	// Write persists the watermark, creating parent directories as needed
	Write(ctx context.Context, ts int64) error
}

// fileStore implements Store using a JSON file on the local filesystem
type fileStore struct {
	path string
}

// NewFileStore creates a file-backed checkpoint store at path
func NewFileStore(path string) Store {
	return &fileStore{path: path}
}

// Read loads the watermark from disk
func (f *fileStore) Read(ctx context.Context) int64 {
	// #nosec G304 -- path comes from configuration, not from registry data
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.InfoContext(ctx, "No checkpoint found, starting from the beginning", "path", f.path)
			return 0
		}
		slog.WarnContext(ctx, "Failed to read checkpoint, starting from the beginning", "path", f.path, "error", err)
		return 0
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		slog.WarnContext(ctx, "Malformed checkpoint, starting from the beginning", "path", f.path, "error", err)
		return 0
	}
	if cp.TS < 0 {
		slog.WarnContext(ctx, "Negative checkpoint value, starting from the beginning", "path", f.path, "ts", cp.TS)
		return 0
	}

	return cp.TS
}

// Write stores the watermark atomically
func (f *fileStore) Write(_ context.Context, ts int64) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0750); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	data, err := json.Marshal(Checkpoint{TS: ts})
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	// Write to temporary file first for atomic operation
	tempPath := f.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary checkpoint file: %w", err)
	}

	if err := os.Rename(tempPath, f.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename checkpoint file: %w", err)
	}

	return nil
}
