package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS boundary_regions (
	id       TEXT PRIMARY KEY,
	boundary TEXT NOT NULL,
	key      TEXT NOT NULL,
	name     TEXT NOT NULL,
	geom     BLOB NOT NULL,
	ord      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS dataset_values (
	id      TEXT PRIMARY KEY,
	dataset TEXT NOT NULL,
	key     TEXT NOT NULL,
	value   REAL NOT NULL,
	ord     INTEGER NOT NULL,
	UNIQUE (dataset, key)
);

CREATE TABLE IF NOT EXISTS syncs (
	name      TEXT NOT NULL,
	kind      TEXT NOT NULL,
	row_count INTEGER NOT NULL,
	synced_at DATETIME NOT NULL,
	PRIMARY KEY (name, kind)
);

CREATE INDEX IF NOT EXISTS idx_boundary_regions_boundary ON boundary_regions(boundary);
CREATE INDEX IF NOT EXISTS idx_dataset_values_dataset ON dataset_values(dataset);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveBoundary(ctx context.Context, name string, regions []RegionRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM boundary_regions WHERE boundary = ?`, name,
	); err != nil {
		return eris.Wrapf(err, "sqlite: clear boundary %s", name)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO boundary_regions (id, boundary, key, name, geom, ord) VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert region")
	}
	defer stmt.Close()

	for i, r := range regions {
		if _, err := stmt.ExecContext(ctx, uuid.New().String(), name, r.Key, r.Name, r.Geom, i); err != nil {
			return eris.Wrapf(err, "sqlite: insert region %s", r.Name)
		}
	}

	if err := recordSyncTx(ctx, tx, name, KindBoundary, len(regions)); err != nil {
		return err
	}
	return eris.Wrapf(tx.Commit(), "sqlite: commit boundary %s", name)
}

func (s *SQLiteStore) LoadBoundary(ctx context.Context, name string) ([]RegionRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, name, geom FROM boundary_regions WHERE boundary = ? ORDER BY ord`, name,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: load boundary %s", name)
	}
	defer rows.Close()

	var regions []RegionRow
	for rows.Next() {
		var r RegionRow
		if err := rows.Scan(&r.Key, &r.Name, &r.Geom); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan region")
		}
		regions = append(regions, r)
	}
	return regions, eris.Wrapf(rows.Err(), "sqlite: load boundary %s iterate", name)
}

func (s *SQLiteStore) SaveDataset(ctx context.Context, name string, values []ValueRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM dataset_values WHERE dataset = ?`, name,
	); err != nil {
		return eris.Wrapf(err, "sqlite: clear dataset %s", name)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO dataset_values (id, dataset, key, value, ord) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert value")
	}
	defer stmt.Close()

	for i, v := range values {
		if _, err := stmt.ExecContext(ctx, uuid.New().String(), name, v.Key, v.Value, i); err != nil {
			return eris.Wrapf(err, "sqlite: insert value %s", v.Key)
		}
	}

	if err := recordSyncTx(ctx, tx, name, KindDataset, len(values)); err != nil {
		return err
	}
	return eris.Wrapf(tx.Commit(), "sqlite: commit dataset %s", name)
}

func (s *SQLiteStore) LoadDataset(ctx context.Context, name string) ([]ValueRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM dataset_values WHERE dataset = ? ORDER BY ord`, name,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: load dataset %s", name)
	}
	defer rows.Close()

	var values []ValueRow
	for rows.Next() {
		var v ValueRow
		if err := rows.Scan(&v.Key, &v.Value); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan value")
		}
		values = append(values, v)
	}
	return values, eris.Wrapf(rows.Err(), "sqlite: load dataset %s iterate", name)
}

func (s *SQLiteStore) Syncs(ctx context.Context) ([]SyncInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, kind, row_count, synced_at FROM syncs ORDER BY kind, name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list syncs")
	}
	defer rows.Close()

	var syncs []SyncInfo
	for rows.Next() {
		var si SyncInfo
		if err := rows.Scan(&si.Name, &si.Kind, &si.Rows, &si.SyncedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan sync")
		}
		syncs = append(syncs, si)
	}
	return syncs, eris.Wrap(rows.Err(), "sqlite: list syncs iterate")
}

func recordSyncTx(ctx context.Context, tx *sql.Tx, name, kind string, rows int) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO syncs (name, kind, row_count, synced_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name, kind) DO UPDATE SET row_count = excluded.row_count, synced_at = excluded.synced_at`,
		name, kind, rows, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: record sync %s/%s", kind, name)
}
