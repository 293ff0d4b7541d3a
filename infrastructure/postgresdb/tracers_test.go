package postgresdb

import (
	"errors"
	"fmt"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompactSQL(t *testing.T) {
	sql := `
		SELECT model, view_type
		FROM route_manifest_views
		WHERE output_root = $1 AND ( position > 0 )
	`
	assert.Equal(t,
		"SELECT model, view_type FROM route_manifest_views WHERE output_root = $1 AND(position > 0)",
		compactSQL(sql))
}

func TestHandlePgError(t *testing.T) {
	assert.Nil(t, HandlePgError(nil))
	assert.ErrorIs(t, HandlePgError(&pgconn.PgError{Code: undefinedTable}), ErrUndefinedTable)
	assert.ErrorIs(t, HandlePgError(&pgconn.PgError{Code: uniqueViolation}), ErrDBDuplicatedEntry)
	assert.ErrorIs(t, HandlePgError(fmt.Errorf("scan: %w", pgx.ErrNoRows)), ErrDBNotFound)

	other := errors.New("boom")
	assert.Equal(t, other, HandlePgError(other))
}

func TestMigrationFilesSorted(t *testing.T) {
	fsys := fstest.MapFS{
		"m/002_b.sql":  {Data: []byte("select 2")},
		"m/001_a.sql":  {Data: []byte("select 1")},
		"m/readme.txt": {Data: []byte("skip")},
	}
	files, err := migrationFiles(fsys, "m")
	require.NoError(t, err)
	assert.Equal(t, []string{"001_a.sql", "002_b.sql"}, files)
}

func TestEmbeddedMigrations(t *testing.T) {
	files, err := migrationFiles(migrationsFS, migrationsDir)
	require.NoError(t, err)
	assert.Contains(t, files, "001_route_manifests.sql")
}

func TestNewRejectsEmptyURL(t *testing.T) {
	_, err := newDatabase(Options{})
	assert.Error(t, err)
}
