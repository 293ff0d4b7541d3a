package discovery_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jrazmi/routegen/app/generators/discovery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestFindSchema(t *testing.T) {
	root := t.TempDir()
	schemaPath := filepath.Join(root, "prisma", "schema.prisma")
	touch(t, schemaPath)
	deep := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(deep, 0o755))

	got, ok := discovery.FindSchema(deep)
	require.True(t, ok)
	assert.Equal(t, schemaPath, got)
}

func TestFindSchemaPrefersNearest(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "schema.prisma"))
	near := filepath.Join(root, "app", "schema.prisma")
	touch(t, near)

	got, ok := discovery.FindSchema(filepath.Join(root, "app"))
	require.True(t, ok)
	assert.Equal(t, near, got)
}

func TestFindSchemaIgnoresDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "schema.prisma"), 0o755))

	got, ok := discovery.FindSchema(root)
	if ok {
		// a schema further up the real filesystem is acceptable, the
		// directory itself is not
		assert.NotEqual(t, filepath.Join(root, "schema.prisma"), got)
	}
}

func TestFindAppRoot(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "web", "package.json"))
	start := filepath.Join(root, "web", "lib")
	require.NoError(t, os.MkdirAll(start, 0o755))

	got, ok := discovery.FindAppRoot(start)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "web"), got)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "web", "src"), 0o755))
	got, ok = discovery.FindAppRoot(start)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "web", "src"), got)
}

func TestResolve(t *testing.T) {
	never := func(string) (string, bool) { return "", false }
	always := func(string) (string, bool) { return "/found", true }

	got, err := discovery.Resolve("/explicit", ".", never, discovery.ErrSchemaNotFound)
	require.NoError(t, err)
	assert.Equal(t, "/explicit", got)

	got, err = discovery.Resolve("", ".", always, discovery.ErrSchemaNotFound)
	require.NoError(t, err)
	assert.Equal(t, "/found", got)

	_, err = discovery.Resolve("", ".", never, discovery.ErrAppRootNotFound)
	assert.ErrorIs(t, err, discovery.ErrAppRootNotFound)
}
