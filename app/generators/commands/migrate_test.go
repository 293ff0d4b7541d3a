package commands_test

import (
	"context"
	"testing"

	"github.com/jrazmi/routegen/app/generators/commands"
	"github.com/jrazmi/routegen/sdk/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestMigrateDSNRequiresDatabase(t *testing.T) {
	err := commands.MigrateDSN(context.Background(), "MIGRATE_TEST", "", logger.NewDiscard().Logger)
	assert.ErrorIs(t, err, commands.ErrNoDatabase)
}

func TestMigrateDSNBadURL(t *testing.T) {
	err := commands.MigrateDSN(context.Background(), "MIGRATE_TEST", "://not-a-url", logger.NewDiscard().Logger)
	assert.Error(t, err)
}

func TestMigrateDSN(t *testing.T) {
	if testing.Short() {
		t.Skip("postgres integration test skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("routegen"),
		tcpostgres.WithUsername("routegen"),
		tcpostgres.WithPassword("routegen"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	log := logger.NewDiscard().Logger
	require.NoError(t, commands.MigrateDSN(ctx, "MIGRATE_TEST", dsn, log))
	require.NoError(t, commands.MigrateDSN(ctx, "MIGRATE_TEST", dsn, log), "second run is a no-op")
}
