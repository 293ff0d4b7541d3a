package postgresdb

import (
	"context"
	"crypto/sha256"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed pgmigrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "pgmigrations"

// Migrate applies every pending migration in pgmigrations/ in file name
// order. Applied migrations are tracked with a checksum in schema_migrations;
// editing an applied migration is an error. Forward only.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	if err := StatusCheck(ctx, pool); err != nil {
		return fmt.Errorf("status check database: %w", err)
	}
	if err := runMigrations(ctx, pool, log, migrationsFS, migrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger, migrations fs.FS, dir string) error {
	if err := createMigrationsTable(ctx, pool); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	files, err := migrationFiles(migrations, dir)
	if err != nil {
		return fmt.Errorf("get migration files: %w", err)
	}

	for _, file := range files {
		if err := applyMigration(ctx, pool, log, migrations, path.Join(dir, file)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}
	return nil
}

func createMigrationsTable(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			checksum VARCHAR(64) NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`
	_, err := pool.Exec(ctx, query)
	return err
}

// migrationFiles returns the sorted .sql file names in dir.
func migrationFiles(migrations fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(migrations, dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func applyMigration(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger, migrations fs.FS, file string) error {
	version := path.Base(file)

	content, err := fs.ReadFile(migrations, file)
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	checksum := fmt.Sprintf("%x", sha256.Sum256(content))

	var existing string
	err = pool.QueryRow(ctx, "SELECT checksum FROM schema_migrations WHERE version = $1", version).Scan(&existing)
	switch {
	case err == nil:
		if existing != checksum {
			return fmt.Errorf("checksum mismatch: migration %s was modified after being applied (expected %s, got %s)",
				version, existing, checksum)
		}
		log.DebugContext(ctx, "migration already applied", "version", version)
		return nil
	case !errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("check migration: %w", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(content)); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version, checksum) VALUES ($1, $2)", version, checksum); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	log.InfoContext(ctx, "migration applied", "version", version, "checksum", checksum[:8])
	return nil
}
