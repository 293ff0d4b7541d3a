package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrazmi/routegen/app/generators/manifest"
	"github.com/jrazmi/routegen/app/generators/viewgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.Equal(t, exitUsage, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Usage:")

	stderr.Reset()
	assert.Equal(t, exitUsage, run([]string{"bogus"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Unknown command: bogus")

	assert.Equal(t, 0, run([]string{"help"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "generate")
}

func TestRunBadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitUsage, run([]string{"generate", "-nope"}, &stdout, &stderr))
	assert.Equal(t, exitUsage, run([]string{"generate", "extra"}, &stdout, &stderr))
}

func TestRunMigrateWithoutDatabase(t *testing.T) {
	t.Setenv("ROUTEGEN_MANIFEST_DSN", "")
	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitUsage, run([]string{"migrate"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "no manifest database")
}

func TestRunGenerate(t *testing.T) {
	t.Setenv("ROUTEGEN_LOG_OUTPUT", "DISCARD")
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.prisma")
	tmplDir := filepath.Join(dir, "templates")
	outDir := filepath.Join(dir, "out")

	require.NoError(t, os.WriteFile(schemaPath, []byte("model Post {\n  id Int @id\n}\n"), 0o644))
	require.NoError(t, os.MkdirAll(tmplDir, 0o755))
	for _, vt := range manifest.ViewTypes {
		require.NoError(t, os.WriteFile(filepath.Join(tmplDir, viewgen.TemplateName(vt)), []byte("{{ .Model.Name }}"), 0o644))
	}

	args := []string{"generate", "-schema", schemaPath, "-output", outDir, "-templates", tmplDir, "-ext", "tsx"}

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run(args, &stdout, &stderr), stderr.String())
	assert.Contains(t, stdout.String(), "GENERATION COMPLETE")
	assert.FileExists(t, filepath.Join(outDir, "routes", "post", "update.tsx"))
	assert.FileExists(t, filepath.Join(outDir, manifest.DefaultFileName))

	stdout.Reset()
	require.Equal(t, 0, run(args, &stdout, &stderr), stderr.String())
	assert.Contains(t, stdout.String(), "5 rendered, 0 changed, 5 unchanged")
}

func TestRunGenerateFatal(t *testing.T) {
	t.Setenv("ROUTEGEN_LOG_OUTPUT", "DISCARD")
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer
	code := run([]string{"generate", "-schema", filepath.Join(dir, "missing.prisma"), "-output", dir}, &stdout, &stderr)
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, stderr.String(), "Generation failed")
}
