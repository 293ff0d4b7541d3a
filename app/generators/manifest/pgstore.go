package manifest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrazmi/routegen/infrastructure/postgresdb"
)

// PostgresStore keeps manifests in Postgres, one snapshot per output root, so
// several machines generating into the same project share change tracking.
// The tables are created by postgresdb.Migrate.
type PostgresStore struct {
	pool *pgxpool.Pool
	root string
	log  *slog.Logger
}

// NewPostgresStore returns a store for the manifest of outputRoot.
func NewPostgresStore(pool *pgxpool.Pool, outputRoot string, log *slog.Logger) *PostgresStore {
	if log == nil {
		log = slog.Default()
	}
	return &PostgresStore{pool: pool, root: outputRoot, log: log}
}

// Location identifies the snapshot.
func (s *PostgresStore) Location() string {
	return "postgres:route_manifests/" + s.root
}

// Load reads the snapshot for the output root, falling back to Default on
// any failure.
func (s *PostgresStore) Load(ctx context.Context) Manifest {
	m, err := s.load(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "manifest unreadable, starting empty", "location", s.Location(), "err", err)
		return Default()
	}
	return m
}

func (s *PostgresStore) load(ctx context.Context) (Manifest, error) {
	m := Default()

	err := s.pool.QueryRow(ctx,
		`SELECT version FROM route_manifests WHERE output_root = $1`, s.root,
	).Scan(&m.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return m, nil
	}
	if err != nil {
		return Manifest{}, fmt.Errorf("query manifest: %w", postgresdb.HandlePgError(err))
	}

	rows, err := s.pool.Query(ctx, `
		SELECT model, view_type, hash
		FROM route_manifest_views
		WHERE output_root = $1
		ORDER BY position`, s.root)
	if err != nil {
		return Manifest{}, fmt.Errorf("query views: %w", postgresdb.HandlePgError(err))
	}

	views, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (GeneratedView, error) {
		var gv GeneratedView
		var vt string
		if err := row.Scan(&gv.Model, &vt, &gv.Hash); err != nil {
			return GeneratedView{}, err
		}
		viewType, err := ParseViewType(vt)
		if err != nil {
			return GeneratedView{}, err
		}
		gv.ViewType = viewType
		return gv, nil
	})
	if err != nil {
		return Manifest{}, fmt.Errorf("scan views: %w", err)
	}
	if views == nil {
		views = []GeneratedView{}
	}
	m.GeneratedViews = views
	return m, nil
}

// Save replaces the snapshot for the output root in a single transaction.
func (s *PostgresStore) Save(ctx context.Context, m Manifest) error {
	if err := s.save(ctx, m); err != nil {
		return &WriteError{Location: s.Location(), Err: err}
	}
	return nil
}

func (s *PostgresStore) save(ctx context.Context, m Manifest) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	version := m.Version
	if version == "" {
		version = CurrentVersion
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO route_manifests (output_root, version, saved_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (output_root) DO UPDATE
		SET version = EXCLUDED.version, saved_at = EXCLUDED.saved_at`,
		s.root, version,
	); err != nil {
		return fmt.Errorf("upsert manifest: %w", postgresdb.HandlePgError(err))
	}

	if _, err := tx.Exec(ctx, `DELETE FROM route_manifest_views WHERE output_root = $1`, s.root); err != nil {
		return fmt.Errorf("clear views: %w", err)
	}

	rows := make([][]any, 0, len(m.GeneratedViews))
	for i, gv := range m.GeneratedViews {
		rows = append(rows, []any{s.root, int32(i), gv.Model, string(gv.ViewType), gv.Hash})
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"route_manifest_views"},
		[]string{"output_root", "position", "model", "view_type", "hash"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("copy views: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
