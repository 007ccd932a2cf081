package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/atlas-cli/internal/db"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS boundary_regions (
	id       TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	boundary TEXT NOT NULL,
	key      TEXT NOT NULL,
	name     TEXT NOT NULL,
	geom     BYTEA NOT NULL,
	ord      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS dataset_values (
	id      TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	dataset TEXT NOT NULL,
	key     TEXT NOT NULL,
	value   DOUBLE PRECISION NOT NULL,
	ord     INTEGER NOT NULL,
	UNIQUE (dataset, key)
);

CREATE TABLE IF NOT EXISTS syncs (
	name      TEXT NOT NULL,
	kind      TEXT NOT NULL,
	row_count INTEGER NOT NULL,
	synced_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (name, kind)
);

CREATE INDEX IF NOT EXISTS idx_boundary_regions_boundary ON boundary_regions(boundary);
CREATE INDEX IF NOT EXISTS idx_dataset_values_dataset ON dataset_values(dataset);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// SaveBoundary replaces a boundary's rows wholesale. Geometry blobs change
// together on re-sync, so a clear plus COPY beats row-wise upserts.
func (s *PostgresStore) SaveBoundary(ctx context.Context, name string, regions []RegionRow) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM boundary_regions WHERE boundary = $1`, name,
	); err != nil {
		return eris.Wrapf(err, "postgres: clear boundary %s", name)
	}

	rows := make([][]any, len(regions))
	for i, r := range regions {
		rows[i] = []any{uuid.New().String(), name, r.Key, r.Name, r.Geom, i}
	}
	if _, err := db.CopyFrom(ctx, s.pool, "boundary_regions",
		[]string{"id", "boundary", "key", "name", "geom", "ord"}, rows,
	); err != nil {
		return eris.Wrapf(err, "postgres: copy boundary %s", name)
	}

	return s.recordSync(ctx, name, KindBoundary, len(regions))
}

func (s *PostgresStore) LoadBoundary(ctx context.Context, name string) ([]RegionRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key, name, geom FROM boundary_regions WHERE boundary = $1 ORDER BY ord`, name,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: load boundary %s", name)
	}
	defer rows.Close()

	var regions []RegionRow
	for rows.Next() {
		var r RegionRow
		if err := rows.Scan(&r.Key, &r.Name, &r.Geom); err != nil {
			return nil, eris.Wrap(err, "postgres: scan region")
		}
		regions = append(regions, r)
	}
	return regions, eris.Wrapf(rows.Err(), "postgres: load boundary %s iterate", name)
}

// SaveDataset upserts values by (dataset, key). Re-syncs mostly update
// values for existing keys, so an upsert keeps rows stable for concurrent
// readers.
func (s *PostgresStore) SaveDataset(ctx context.Context, name string, values []ValueRow) error {
	rows := make([][]any, len(values))
	for i, v := range values {
		rows[i] = []any{name, v.Key, v.Value, i}
	}

	if _, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "dataset_values",
		Columns:      []string{"dataset", "key", "value", "ord"},
		ConflictKeys: []string{"dataset", "key"},
	}, rows); err != nil {
		return eris.Wrapf(err, "postgres: upsert dataset %s", name)
	}

	return s.recordSync(ctx, name, KindDataset, len(values))
}

func (s *PostgresStore) LoadDataset(ctx context.Context, name string) ([]ValueRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key, value FROM dataset_values WHERE dataset = $1 ORDER BY ord`, name,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: load dataset %s", name)
	}
	defer rows.Close()

	var values []ValueRow
	for rows.Next() {
		var v ValueRow
		if err := rows.Scan(&v.Key, &v.Value); err != nil {
			return nil, eris.Wrap(err, "postgres: scan value")
		}
		values = append(values, v)
	}
	return values, eris.Wrapf(rows.Err(), "postgres: load dataset %s iterate", name)
}

func (s *PostgresStore) Syncs(ctx context.Context) ([]SyncInfo, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, kind, row_count, synced_at FROM syncs ORDER BY kind, name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list syncs")
	}
	defer rows.Close()

	var syncs []SyncInfo
	for rows.Next() {
		var si SyncInfo
		if err := rows.Scan(&si.Name, &si.Kind, &si.Rows, &si.SyncedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan sync")
		}
		syncs = append(syncs, si)
	}
	return syncs, eris.Wrap(rows.Err(), "postgres: list syncs iterate")
}

func (s *PostgresStore) recordSync(ctx context.Context, name, kind string, rows int) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO syncs (name, kind, row_count, synced_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (name, kind) DO UPDATE SET row_count = EXCLUDED.row_count, synced_at = EXCLUDED.synced_at`,
		name, kind, rows, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: record sync %s/%s", kind, name)
}
