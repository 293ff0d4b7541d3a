// Package commands holds the maintenance subcommands of the generator.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrazmi/routegen/infrastructure/postgresdb"
)

// ErrNoDatabase is returned when migrate is called without a manifest database.
var ErrNoDatabase = errors.New("no manifest database configured (set -manifest-db or ROUTEGEN_MANIFEST_DSN)")

// MigrateTimeout bounds a migrate run.
const MigrateTimeout = 5 * time.Minute

// Migrate creates or upgrades the manifest tables in the database.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, MigrateTimeout)
	defer cancel()

	log.InfoContext(ctx, "migration started", "step", "checking database status")

	if err := postgresdb.StatusCheck(ctx, pool); err != nil {
		return fmt.Errorf("database status check failed: %w", err)
	}

	log.InfoContext(ctx, "database status check successful", "step", "running migrations")

	if err := postgresdb.Migrate(ctx, pool, log); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	log.InfoContext(ctx, "migrations completed successfully")
	return nil
}

// MigrateDSN opens a pool for dsn, migrates it and closes it.
func MigrateDSN(ctx context.Context, envPrefix, dsn string, log *slog.Logger) error {
	if dsn == "" {
		return ErrNoDatabase
	}

	pool, err := postgresdb.New(envPrefix, dsn, postgresdb.WithLogger(log))
	if err != nil {
		return fmt.Errorf("connect manifest database: %w", err)
	}
	defer pool.Close()

	return Migrate(ctx, pool, log)
}
