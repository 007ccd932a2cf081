package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/atlas-cli/internal/atlas"
	"github.com/sells-group/atlas-cli/internal/boundary"
	"github.com/sells-group/atlas-cli/internal/dataset"
	"github.com/sells-group/atlas-cli/internal/fetcher"
	"github.com/sells-group/atlas-cli/internal/store"
)

// env bundles the wired dependencies a command needs.
type env struct {
	store   store.Store
	builder *atlas.Builder
}

func (e *env) Close() {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			zap.L().Warn("store close failed", zap.Error(err))
		}
	}
}

// initRegistries wires the boundary, dataset, and map registries from
// the loaded configuration, including any user-defined maps file.
func initRegistries() (*boundary.Registry, *dataset.Registry, *atlas.Registry, error) {
	boundaries := boundary.NewRegistry()
	datasets := dataset.NewRegistry(dataset.Options{
		CensusAPIKey:   cfg.Census.APIKey,
		BEAWorkbookURL: cfg.BEA.WorkbookURL,
	})
	maps, err := atlas.NewRegistry(boundaries, datasets)
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.Maps.File != "" {
		n, err := maps.LoadFile(cfg.Maps.File)
		if err != nil {
			return nil, nil, nil, err
		}
		zap.L().Info("loaded map definitions",
			zap.String("file", cfg.Maps.File), zap.Int("count", n))
	}
	return boundaries, datasets, maps, nil
}

// initEnv builds the registries, store, fetcher, and map builder from
// the loaded configuration.
func initEnv(ctx context.Context) (*env, error) {
	boundaries, datasets, maps, err := initRegistries()
	if err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  cfg.Fetch.UserAgent,
		Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Fetch.MaxRetries,
	})

	tempDir := cfg.Fetch.TempDir
	if tempDir == "" {
		tempDir = filepath.Join(os.TempDir(), "atlas")
	}
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		_ = st.Close()
		return nil, eris.Wrapf(err, "create temp dir %s", tempDir)
	}

	return &env{
		store: st,
		builder: &atlas.Builder{
			Store:      st,
			Fetcher:    f,
			Boundaries: boundaries,
			Datasets:   datasets,
			Maps:       maps,
			TempDir:    tempDir,
			MaxAge:     time.Duration(cfg.Cache.MaxAgeHours) * time.Hour,
		},
	}, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "atlas.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
