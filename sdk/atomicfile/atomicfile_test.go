package atomicfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jrazmi/routegen/sdk/atomicfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes", "post", "list.svelte")

	require.NoError(t, atomicfile.WriteFile(path, []byte("one"), 0o644))
	require.NoError(t, atomicfile.WriteFile(path, []byte("two"), 0o644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestWriteFileParentIsAFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "routes")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := atomicfile.WriteFile(filepath.Join(blocker, "x", "list.svelte"), []byte("x"), 0o644)
	assert.Error(t, err)
}
