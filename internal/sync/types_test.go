package sync

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResult_Watermark(t *testing.T) {
	t.Parallel()

	newTS := int64(200)
	tests := []struct {
		name     string
		result   Result
		expected int64
	}{
		{name: "no record seen", result: Result{PreviousTS: 100}, expected: 100},
		{name: "not written", result: Result{PreviousTS: 100, NewTS: &newTS}, expected: 100},
		{name: "written", result: Result{PreviousTS: 100, NewTS: &newTS, CheckpointWritten: true}, expected: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.result.Watermark())
		})
	}
}

func TestError(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	err := &Error{Reason: StopRenderFailed, Result: &Result{}, Err: cause}

	assert.Equal(t, "sync run stopped (render-failed): disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}
