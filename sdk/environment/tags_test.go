package environment_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrazmi/routegen/sdk/environment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tagged struct {
	Name    string        `env:"NAME" default:"fallback"`
	Workers int           `env:"WORKERS" default:"4"`
	DryRun  bool          `env:"DRY_RUN" default:"false"`
	Wait    time.Duration `env:"WAIT" default:"250ms"`
	Kinds   []string      `env:"KINDS" separator:";"`
}

func TestParseEnvTags(t *testing.T) {
	t.Setenv("TEST_NAME", "routes")
	t.Setenv("TEST_KINDS", "list; create ;update")

	var cfg tagged
	require.NoError(t, environment.ParseEnvTags("TEST", &cfg))

	assert.Equal(t, "routes", cfg.Name)
	assert.Equal(t, 4, cfg.Workers)
	assert.False(t, cfg.DryRun)
	assert.Equal(t, 250*time.Millisecond, cfg.Wait)
	assert.Equal(t, []string{"list", "create", "update"}, cfg.Kinds)
}

func TestOverlayEnvTagsKeepsExistingValues(t *testing.T) {
	t.Setenv("OVL_WORKERS", "9")

	cfg := tagged{Name: "from-file", Workers: 2}
	require.NoError(t, environment.OverlayEnvTags("OVL", &cfg))

	assert.Equal(t, "from-file", cfg.Name)
	assert.Equal(t, 9, cfg.Workers)
	assert.Zero(t, cfg.Wait)
}

func TestApplyDefaults(t *testing.T) {
	var cfg tagged
	require.NoError(t, environment.ApplyDefaults(&cfg))

	assert.Equal(t, "fallback", cfg.Name)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 250*time.Millisecond, cfg.Wait)
	assert.Nil(t, cfg.Kinds)
}

func TestParseEnvTagsRejectsNonPointer(t *testing.T) {
	assert.Error(t, environment.ParseEnvTags("", tagged{}))
}

func TestParseEnvTagsBadValue(t *testing.T) {
	t.Setenv("BAD_WORKERS", "many")

	var cfg tagged
	assert.Error(t, environment.ParseEnvTags("BAD", &cfg))
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	require.NoError(t, environment.Load(filepath.Join(t.TempDir(), "nope.env")))
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ROUTEGEN_TEST_DOTENV=loaded\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("ROUTEGEN_TEST_DOTENV") })

	require.NoError(t, environment.Load(path))
	assert.Equal(t, "loaded", os.Getenv(environment.GetEnvKeyPrefix("ROUTEGEN", "TEST_DOTENV")))
}
