package sync

import (
	"fmt"
)

// StopReason records why a run ended
type StopReason string

// Stop reasons
const (
	StopExhausted        StopReason = "exhausted"
	StopFetchFailed      StopReason = "fetch-failed"
	StopWatermarkReached StopReason = "watermark-reached"
	StopNoNewRecords     StopReason = "no-new-records"
	StopMaxPages         StopReason = "max-pages"
	StopCancelled        StopReason = "cancelled"
	StopRenderFailed     StopReason = "render-failed"
)

// Result describes the outcome of one run
type Result struct {
	// RunID identifies the run in logs and traces
	RunID string `json:"run_id"`

	// PreviousTS is the watermark read at the start of the run
	PreviousTS int64 `json:"previous_ts"`

	// NewTS is the timestamp of the first record of page 0, nil when the run saw no record
	NewTS *int64 `json:"new_ts,omitempty"`

	PagesFetched   int        `json:"pages_fetched"`
	Rendered       int        `json:"rendered"`
	SkippedInvalid int        `json:"skipped_invalid"`
	StopReason     StopReason `json:"stop_reason"`

	// CheckpointWritten is true when the watermark was advanced and persisted
	CheckpointWritten bool `json:"checkpoint_written"`
}

// Watermark returns the watermark in effect after the run
func (r *Result) Watermark() int64 {
	if r.CheckpointWritten && r.NewTS != nil {
		return *r.NewTS
	}
	return r.PreviousTS
}

// Error is returned when a run aborts. It carries the partial result so
// callers can still report what was rendered before the failure.
type Error struct {
	Reason StopReason
	Result *Result
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("sync run stopped (%s): %v", e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
