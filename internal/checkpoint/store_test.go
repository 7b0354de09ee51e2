package checkpoint

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Read(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content *string
		want    int64
	}{
		{
			name:    "missing file reads as zero",
			content: nil,
			want:    0,
		},
		{
			name:    "valid checkpoint",
			content: ptr(`{"ts": 1714089600000}`),
			want:    1714089600000,
		},
		{
			name:    "malformed JSON reads as zero",
			content: ptr(`{"ts": `),
			want:    0,
		},
		{
			name:    "wrong type reads as zero",
			content: ptr(`{"ts": "yesterday"}`),
			want:    0,
		},
		{
			name:    "empty object reads as zero",
			content: ptr(`{}`),
			want:    0,
		},
		{
			name:    "negative value reads as zero",
			content: ptr(`{"ts": -10}`),
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "Artifact", IndexFileName)
			if tt.content != nil {
				require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0600))
			}

			assert.Equal(t, tt.want, NewFileStore(path).Read(context.Background()))
		})
	}
}

func TestFileStore_Read_Unreadable(t *testing.T) {
	t.Parallel()

	// A directory where the file should be cannot be read as a file
	path := filepath.Join(t.TempDir(), IndexFileName)
	require.NoError(t, os.MkdirAll(path, 0750))

	assert.Equal(t, int64(0), NewFileStore(path).Read(context.Background()))
}

func TestFileStore_WriteThenRead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "Artifact", IndexFileName)
	store := NewFileStore(path)

	require.NoError(t, store.Write(ctx, 42))
	assert.Equal(t, int64(42), store.Read(ctx))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ts": 42}`, string(data))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file should be renamed away")

	require.NoError(t, store.Write(ctx, 43))
	assert.Equal(t, int64(43), store.Read(ctx))
}

func TestFileStore_Write_Failure(t *testing.T) {
	t.Parallel()

	// Parent "directory" is a regular file, so MkdirAll fails
	dir := t.TempDir()
	blocker := filepath.Join(dir, "Artifact")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	err := NewFileStore(filepath.Join(blocker, IndexFileName)).Write(context.Background(), 1)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create checkpoint directory")
}

func ptr(s string) *string {
	return &s
}
