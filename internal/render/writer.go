package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/stacklok/toolhive-badge-sync/internal/artifact"
)

const (
	// BadgeDir is the directory below the base directory holding SVG badges
	BadgeDir = "Badge"

	// SnapshotDir is the directory below the base directory holding JSON snapshots
	SnapshotDir = "Artifact"

	badgeExt    = ".svg"
	snapshotExt = ".json"
)

// Writer writes rendered artifacts below a base directory:
//
//	<base>/Badge/<group/path>/<artifact_id>.svg
//	<base>/Artifact/<group/path>/<artifact_id>.json
type Writer struct {
	baseDir string
	now     func() time.Time
}

// WriterOption configures a Writer
type WriterOption func(*Writer)

// WithClock overrides the clock used for the snapshot last_updated field
func WithClock(now func() time.Time) WriterOption {
	return func(w *Writer) {
		w.now = now
	}
}

// NewWriter creates a Writer rooted at baseDir
func NewWriter(baseDir string, opts ...WriterOption) *Writer {
	w := &Writer{
		baseDir: baseDir,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// BadgePath returns where the badge of the given coordinate is written
func (w *Writer) BadgePath(coord artifact.Coordinate) (string, error) {
	return w.targetPath(BadgeDir, coord, badgeExt)
}

// SnapshotPath returns where the snapshot of the given coordinate is written
func (w *Writer) SnapshotPath(coord artifact.Coordinate) (string, error) {
	return w.targetPath(SnapshotDir, coord, snapshotExt)
}

// RenderBadge renders the badge of meta and writes it, overwriting any previous render
func (w *Writer) RenderBadge(ctx context.Context, meta artifact.Metadata) (string, error) {
	path, err := w.BadgePath(meta.Coordinate())
	if err != nil {
		return "", err
	}

	data, err := Badge(meta)
	if err != nil {
		return "", err
	}
	if err := writeFile(path, data); err != nil {
		return "", err
	}

	slog.DebugContext(ctx, "Rendered badge", "artifact", meta.Coordinate().String(), "path", path)
	return path, nil
}

// RenderSnapshot renders the JSON snapshot of meta and writes it. It returns
// ok=false without error when the coordinate is blank, since the coordinate
// is the file key and cannot be empty.
func (w *Writer) RenderSnapshot(ctx context.Context, meta artifact.Metadata) (path string, ok bool, err error) {
	coord := meta.Coordinate()
	if coord.GroupID == "" || coord.ArtifactID == "" {
		slog.WarnContext(ctx, "Skipping snapshot with blank coordinate",
			"group_id", coord.GroupID, "artifact_id", coord.ArtifactID)
		return "", false, nil
	}

	path, err = w.SnapshotPath(coord)
	if err != nil {
		return "", false, err
	}

	data, err := Snapshot(meta, w.now())
	if err != nil {
		return "", false, err
	}
	if err := writeFile(path, data); err != nil {
		return "", false, err
	}

	slog.DebugContext(ctx, "Rendered snapshot", "artifact", coord.String(), "path", path)
	return path, true, nil
}

func (w *Writer) targetPath(kind string, coord artifact.Coordinate, ext string) (string, error) {
	rel, err := coord.RelPath(ext)
	if err != nil {
		return "", err
	}
	return filepath.Join(w.baseDir, kind, rel), nil
}

// writeFile writes data to path through a temporary file and a rename so that
// readers never observe a half-written badge.
func writeFile(path string, data []byte) error {
	//nolint:gosec // rendered badges and snapshots are published as static files
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	tempPath := path + ".tmp"
	//nolint:gosec // rendered badges and snapshots are published as static files
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file for %s: %w", path, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename %s: %w", path, err)
	}
	return nil
}
