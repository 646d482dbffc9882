package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDir(t *testing.T) (*Dir, string) {
	t.Helper()

	root := t.TempDir()

	return NewDir(zap.NewNop().Sugar(), root), root
}

func TestOpenWriteThenRead(t *testing.T) {
	t.Parallel()

	d, _ := newTestDir(t)

	w, err := d.OpenWrite("file.bin")
	require.NoError(t, err)

	_, err = w.Write([]byte("content"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, size, err := d.OpenRead("file.bin")
	require.NoError(t, err)

	defer func() {
		require.NoError(t, r.Close())
	}()

	assert.Equal(t, int64(7), size)

	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "content", string(b))
}

func TestOpenReadNotFound(t *testing.T) {
	t.Parallel()

	d, _ := newTestDir(t)

	_, _, err := d.OpenRead("nope.bin")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRemove(t *testing.T) {
	t.Parallel()

	d, root := newTestDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "gone.txt"), []byte("x"), 0o644))

	require.NoError(t, d.Remove("gone.txt"))
	assert.NoFileExists(t, filepath.Join(root, "gone.txt"))

	require.Error(t, d.Remove("gone.txt"))
}

func TestDuplicate(t *testing.T) {
	t.Parallel()

	d, root := newTestDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "keep.txt"), []byte("precious"), 0o644))

	require.NoError(t, d.Duplicate("keep.txt"))

	b, err := os.ReadFile(filepath.Join(root, "backup", "keep.txt"))
	require.NoError(t, err)
	assert.Equal(t, "precious", string(b))
}

func TestPathEscapeFlattened(t *testing.T) {
	t.Parallel()

	d, root := newTestDir(t)

	w, err := d.OpenWrite("../../escape.txt")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.FileExists(t, filepath.Join(root, "escape.txt"))
}
