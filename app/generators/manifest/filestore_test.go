package manifest_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrazmi/routegen/app/generators/manifest"
	"github.com/jrazmi/routegen/sdk/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleManifest() manifest.Manifest {
	return manifest.Manifest{
		Version: manifest.CurrentVersion,
		GeneratedViews: []manifest.GeneratedView{
			{Model: "Post", ViewType: manifest.ViewList, Hash: "h1"},
			{Model: "Post", ViewType: manifest.ViewCreate, Hash: "h2"},
			{Model: "User", ViewType: manifest.ViewSearch, Hash: "h3"},
		},
	}
}

func newStore(t *testing.T, dir string, opts ...manifest.FileOption) *manifest.FileStore {
	t.Helper()
	opts = append([]manifest.FileOption{manifest.WithLogger(logger.NewDiscard().Logger)}, opts...)
	return manifest.NewFileStore(dir, opts...)
}

func TestFileStoreMissingFileLoadsDefault(t *testing.T) {
	s := newStore(t, t.TempDir())
	assert.Equal(t, manifest.Default(), s.Load(context.Background()))
}

func TestFileStoreCorruptFileLoadsDefault(t *testing.T) {
	dir := t.TempDir()
	s := newStore(t, dir)
	require.NoError(t, os.WriteFile(s.Location(), []byte("{not json"), 0o644))

	assert.Equal(t, manifest.Default(), s.Load(context.Background()))
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, t.TempDir())

	require.NoError(t, s.Save(ctx, sampleManifest()))
	loaded := s.Load(ctx)
	assert.Equal(t, sampleManifest(), loaded)

	// saving the loaded value unchanged reproduces the same entries
	require.NoError(t, s.Save(ctx, loaded))
	assert.ElementsMatch(t, sampleManifest().GeneratedViews, s.Load(ctx).GeneratedViews)
}

func TestFileStoreJSONShape(t *testing.T) {
	s := newStore(t, t.TempDir())
	require.NoError(t, s.Save(context.Background(), sampleManifest()))

	data, err := os.ReadFile(s.Location())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "1.0.0", raw["version"])

	views := raw["generatedViews"].([]any)
	require.Len(t, views, 3)
	assert.Equal(t, map[string]any{"model": "Post", "viewType": "List", "hash": "h1"}, views[0])
}

func TestFileStoreEmptyManifestWritesEmptyList(t *testing.T) {
	s := newStore(t, t.TempDir())
	require.NoError(t, s.Save(context.Background(), manifest.Manifest{Version: "1.0.0"}))

	data, err := os.ReadFile(s.Location())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"generatedViews": []`)
}

func TestFileStoreMissingVersionDefaults(t *testing.T) {
	s := newStore(t, t.TempDir())
	require.NoError(t, os.WriteFile(s.Location(), []byte(`{"generatedViews":[{"model":"A","viewType":"List","hash":"x"}]}`), 0o644))

	m := s.Load(context.Background())
	assert.Equal(t, manifest.CurrentVersion, m.Version)
	assert.Equal(t, 1, m.Len())
}

func TestFileStoreCustomName(t *testing.T) {
	dir := t.TempDir()
	s := newStore(t, dir, manifest.WithFileName("views.json"))
	assert.Equal(t, filepath.Join(dir, "views.json"), s.Location())
}

func TestFileStoreSaveFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "out")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	s := newStore(t, blocker)
	err := s.Save(context.Background(), sampleManifest())
	require.Error(t, err)

	var we *manifest.WriteError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, s.Location(), we.Location)
}
