package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/jrazmi/routegen/sdk/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromEnvJSON(t *testing.T) {
	t.Setenv("LOGTEST_LOG_FORMAT", "json")
	t.Setenv("LOGTEST_LOG_LEVEL", "warn")
	t.Setenv("LOGTEST_LOG_TIME_FORMAT", "Unix")

	var buf bytes.Buffer
	log, err := logger.NewFromEnv("LOGTEST", logger.WithOutput(&buf))
	require.NoError(t, err)

	ctx := context.Background()
	log.InfoContext(ctx, "dropped")
	log.With("run_id", "abc").WarnContextf(ctx, "view %s", "list")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "view list", rec["msg"])
	assert.Equal(t, "abc", rec["run_id"])
	assert.IsType(t, float64(0), rec["time"])
}

func TestWithLevelOverridesEnv(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewDefault(logger.WithOutput(&buf), logger.WithLevel("error"))

	log.InfoContextf(context.Background(), "hidden %d", 1)
	assert.Empty(t, buf.String())
}

func TestNewFromEnvSource(t *testing.T) {
	t.Setenv("SRCTEST_LOG_FORMAT", "json")
	t.Setenv("SRCTEST_LOG_SOURCE", "true")

	var buf bytes.Buffer
	log, err := logger.NewFromEnv("SRCTEST", logger.WithOutput(&buf))
	require.NoError(t, err)

	log.Info("with source")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Contains(t, rec, "source")
}
