package atlas

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/atlas-cli/internal/boundary"
	"github.com/sells-group/atlas-cli/internal/choropleth"
	"github.com/sells-group/atlas-cli/internal/dataset"
	"github.com/sells-group/atlas-cli/internal/fetcher"
	"github.com/sells-group/atlas-cli/internal/join"
	"github.com/sells-group/atlas-cli/internal/store"
)

// Builder resolves map definitions into rendered artifacts. Boundary
// regions and dataset values load from the store when a fresh sync
// exists and fall back to the providers otherwise; fetched rows are
// persisted so the next build skips the network.
type Builder struct {
	Store      store.Store
	Fetcher    fetcher.Fetcher
	Boundaries *boundary.Registry
	Datasets   *dataset.Registry
	Maps       *Registry

	// TempDir receives per-source scratch directories for downloads.
	TempDir string

	// MaxAge bounds how old a stored sync may be before the source is
	// refetched. Zero means stored rows never expire.
	MaxAge time.Duration

	// Refresh bypasses the store on reads. Fetched rows still persist.
	Refresh bool
}

// BuildMap renders the named map and reports its join coverage.
func (b *Builder) BuildMap(ctx context.Context, name string) (*choropleth.Artifact, join.Report, error) {
	def, err := b.Maps.Get(name)
	if err != nil {
		return nil, join.Report{}, err
	}
	regions, err := b.Regions(ctx, def.Boundary)
	if err != nil {
		return nil, join.Report{}, err
	}
	values, err := b.Values(ctx, def.Dataset)
	if err != nil {
		return nil, join.Report{}, err
	}

	coll, report := join.Join(regions, values)
	report.Log(def.Name)

	// Join hands back value copies, so scaling in place is safe.
	if def.Scale != 0 && def.Scale != 1 {
		for _, region := range coll {
			if region.Value != nil {
				*region.Value *= def.Scale
			}
		}
	}

	label := def.Title
	if label == "" {
		ds, err := b.Datasets.Get(def.Dataset)
		if err != nil {
			return nil, report, err
		}
		label = ds.Label()
	}

	artifact, err := choropleth.Render(coll, label, def.renderConfig())
	if err != nil {
		return nil, report, eris.Wrapf(err, "atlas: render map %q", def.Name)
	}
	return artifact, report, nil
}

// Regions returns the named boundary's regions, store-first.
func (b *Builder) Regions(ctx context.Context, name string) ([]boundary.Region, error) {
	src, err := b.Boundaries.Get(name)
	if err != nil {
		return nil, err
	}

	if b.Store != nil && !b.Refresh {
		rows, err := b.Store.LoadBoundary(ctx, name)
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 && b.fresh(ctx, name, store.KindBoundary) {
			zap.L().Debug("boundary served from store",
				zap.String("boundary", name),
				zap.Int("regions", len(rows)))
			return decodeRegionRows(name, rows)
		}
	}

	zap.L().Info("fetching boundary", zap.String("boundary", name), zap.String("url", src.URL()))
	regions, err := src.Fetch(ctx, b.Fetcher, filepath.Join(b.TempDir, name))
	if err != nil {
		return nil, err
	}
	if b.Store != nil {
		rows, err := encodeRegionRows(regions)
		if err != nil {
			return nil, err
		}
		if err := b.Store.SaveBoundary(ctx, name, rows); err != nil {
			return nil, eris.Wrapf(err, "atlas: persist boundary %q", name)
		}
	}
	return regions, nil
}

// Values returns the named dataset's values, store-first.
func (b *Builder) Values(ctx context.Context, name string) ([]dataset.Value, error) {
	ds, err := b.Datasets.Get(name)
	if err != nil {
		return nil, err
	}

	if b.Store != nil && !b.Refresh {
		rows, err := b.Store.LoadDataset(ctx, name)
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 && b.fresh(ctx, name, store.KindDataset) {
			zap.L().Debug("dataset served from store",
				zap.String("dataset", name),
				zap.Int("values", len(rows)))
			values := make([]dataset.Value, len(rows))
			for i, row := range rows {
				values[i] = dataset.Value{Key: row.Key, Value: row.Value}
			}
			return values, nil
		}
	}

	zap.L().Info("fetching dataset", zap.String("dataset", name))
	values, err := ds.Fetch(ctx, b.Fetcher, filepath.Join(b.TempDir, name))
	if err != nil {
		return nil, err
	}
	if b.Store != nil {
		rows := make([]store.ValueRow, len(values))
		for i, v := range values {
			rows[i] = store.ValueRow{Key: v.Key, Value: v.Value}
		}
		if err := b.Store.SaveDataset(ctx, name, rows); err != nil {
			return nil, eris.Wrapf(err, "atlas: persist dataset %q", name)
		}
	}
	return values, nil
}

// fresh reports whether the stored sync for name is within MaxAge.
func (b *Builder) fresh(ctx context.Context, name, kind string) bool {
	if b.MaxAge <= 0 {
		return true
	}
	syncs, err := b.Store.Syncs(ctx)
	if err != nil {
		zap.L().Warn("sync lookup failed, treating stored rows as stale",
			zap.String("name", name), zap.Error(err))
		return false
	}
	for _, s := range syncs {
		if s.Name == name && s.Kind == kind {
			return time.Since(s.SyncedAt) <= b.MaxAge
		}
	}
	return false
}

func encodeRegionRows(regions []boundary.Region) ([]store.RegionRow, error) {
	rows := make([]store.RegionRow, 0, len(regions))
	for _, r := range regions {
		geomBytes, err := boundary.MarshalGeometry(r.Geometry)
		if err != nil {
			return nil, eris.Wrapf(err, "atlas: encode geometry for %q", r.Key)
		}
		rows = append(rows, store.RegionRow{Key: r.Key, Name: r.Name, Geom: geomBytes})
	}
	return rows, nil
}

func decodeRegionRows(name string, rows []store.RegionRow) ([]boundary.Region, error) {
	regions := make([]boundary.Region, 0, len(rows))
	for _, row := range rows {
		g, err := boundary.UnmarshalGeometry(row.Geom)
		if err != nil {
			return nil, eris.Wrapf(err, "atlas: stored geometry for %s/%s", name, row.Key)
		}
		regions = append(regions, boundary.Region{Key: row.Key, Name: row.Name, Geometry: g})
	}
	return regions, nil
}
