package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	badgesync "github.com/stacklok/toolhive-badge-sync/internal/sync"
)

func TestWriteSummary(t *testing.T) {
	t.Parallel()

	newTS := int64(1714089600000)
	tests := []struct {
		name     string
		result   *badgesync.Result
		contains []string
	}{
		{
			name: "completed run",
			result: &badgesync.Result{
				RunID:             "run-1",
				PreviousTS:        1700000000000,
				NewTS:             &newTS,
				PagesFetched:      2,
				Rendered:          20,
				SkippedInvalid:    1,
				StopReason:        badgesync.StopExhausted,
				CheckpointWritten: true,
			},
			contains: []string{"run-1", "exhausted", "1714089600000", "1700000000000", "true"},
		},
		{
			name: "no record seen",
			result: &badgesync.Result{
				RunID:      "run-2",
				StopReason: badgesync.StopFetchFailed,
			},
			contains: []string{"run-2", "fetch-failed", "-", "false"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			require.NoError(t, writeSummary(&out, tt.result))

			for _, s := range tt.contains {
				assert.Contains(t, out.String(), s)
			}
		})
	}
}
