package render

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/stacklok/toolhive-badge-sync/internal/artifact"
)

// snapshotDocument is the on-disk JSON form of an artifact
type snapshotDocument struct {
	artifact.Metadata
	LastUpdated string `json:"last_updated"`
}

// Snapshot renders the JSON metadata snapshot of an artifact. last_updated is
// set from now and is the only field that differs between two renders of the
// same metadata.
func Snapshot(meta artifact.Metadata, now time.Time) ([]byte, error) {
	if meta.Licenses == nil {
		meta.Licenses = []string{}
	}
	if meta.Categories == nil {
		meta.Categories = []string{}
	}

	data, err := json.MarshalIndent(snapshotDocument{
		Metadata:    meta,
		LastUpdated: now.UTC().Format(time.RFC3339),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot for %s: %w", meta.Coordinate(), err)
	}
	return append(data, '\n'), nil
}
