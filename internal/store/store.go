// Package store persists fetched boundaries and dataset values so repeat
// renders run without touching the providers.
package store

import (
	"context"
	"time"
)

// Sync kinds.
const (
	KindBoundary = "boundary"
	KindDataset  = "dataset"
)

// RegionRow is a persisted boundary region. Geom holds EWKB as produced
// by boundary.MarshalGeometry.
type RegionRow struct {
	Key  string
	Name string
	Geom []byte
}

// ValueRow is a persisted dataset value.
type ValueRow struct {
	Key   string
	Value float64
}

// SyncInfo records one completed fetch of a boundary or dataset.
type SyncInfo struct {
	Name     string
	Kind     string
	Rows     int
	SyncedAt time.Time
}

// Store is the persistence interface for fetched sources. Load methods
// return no rows and no error when the name has never been synced.
type Store interface {
	SaveBoundary(ctx context.Context, name string, regions []RegionRow) error
	LoadBoundary(ctx context.Context, name string) ([]RegionRow, error)

	SaveDataset(ctx context.Context, name string, values []ValueRow) error
	LoadDataset(ctx context.Context, name string) ([]ValueRow, error)

	Syncs(ctx context.Context) ([]SyncInfo, error)

	Migrate(ctx context.Context) error
	Close() error
}
