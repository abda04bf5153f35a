package watermark

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_MissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "last_sent_id.json"))

	id, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), id)
}

func TestFileStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "last_sent_id.json")
	store := NewFileStore(path)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, 3))
	require.NoError(t, store.Save(ctx, 17))

	id, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(17), id)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"last_id": 17}`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temporary files should remain")
	assert.Equal(t, "last_sent_id.json", entries[0].Name())
}

func TestFileStore_ReadsExistingFormat(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int64
	}{
		{name: "written by an earlier version", content: `{"last_id": 42}`, want: 42},
		{name: "key absent", content: `{}`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "track.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			id, err := NewFileStore(path).Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path).Load(context.Background())
	require.Error(t, err)

	var wmErr *Error
	require.ErrorAs(t, err, &wmErr)
	assert.Equal(t, "decode", wmErr.Op)
}

func TestFileStore_SaveIntoMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "track.json")

	err := NewFileStore(path).Save(context.Background(), 1)

	var wmErr *Error
	require.ErrorAs(t, err, &wmErr)
	assert.Contains(t, err.Error(), path)
}
