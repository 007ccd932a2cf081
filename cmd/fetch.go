package main

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch sources into the store",
	Long: `Download boundary and dataset sources and persist them.

By default every registered boundary and dataset syncs. Use --boundaries
or --datasets to restrict the run, and --refresh to refetch sources that
are already stored.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "fetch"))

		if err := cfg.Validate("fetch"); err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		refresh, _ := cmd.Flags().GetBool("refresh")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		if concurrency < 1 {
			concurrency = 1
		}
		env.builder.Refresh = refresh

		boundaryNames, datasetNames, err := fetchTargets(cmd, env)
		if err != nil {
			return err
		}

		log.Info("starting fetch",
			zap.Strings("boundaries", boundaryNames),
			zap.Strings("datasets", datasetNames),
			zap.Bool("refresh", refresh),
			zap.Int("concurrency", concurrency),
		)

		var succeeded, failed atomic.Int64
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)

		for _, name := range boundaryNames {
			g.Go(func() error {
				regions, err := env.builder.Regions(gctx, name)
				if err != nil {
					failed.Add(1)
					log.Error("boundary fetch failed", zap.String("boundary", name), zap.Error(err))
					return nil // don't abort the run on individual failure
				}
				succeeded.Add(1)
				fmt.Printf("boundary %s: %d regions\n", name, len(regions))
				return nil
			})
		}
		for _, name := range datasetNames {
			g.Go(func() error {
				values, err := env.builder.Values(gctx, name)
				if err != nil {
					failed.Add(1)
					log.Error("dataset fetch failed", zap.String("dataset", name), zap.Error(err))
					return nil
				}
				succeeded.Add(1)
				fmt.Printf("dataset %s: %d values\n", name, len(values))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		fmt.Printf("Fetched %d sources\n", succeeded.Load())
		if n := failed.Load(); n > 0 {
			return eris.Errorf("fetch: %d of %d sources failed", n, n+succeeded.Load())
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().String("boundaries", "", "comma-separated boundary names (default all)")
	fetchCmd.Flags().String("datasets", "", "comma-separated dataset names (default all)")
	fetchCmd.Flags().Bool("refresh", false, "refetch sources that are already stored")
	fetchCmd.Flags().Int("concurrency", 3, "concurrent source fetches")
	rootCmd.AddCommand(fetchCmd)
}

// fetchTargets resolves the --boundaries and --datasets flags to source
// names, defaulting to everything registered. Restricting either flag
// narrows the run to only the named sources.
func fetchTargets(cmd *cobra.Command, env *env) ([]string, []string, error) {
	boundariesStr, _ := cmd.Flags().GetString("boundaries")
	datasetsStr, _ := cmd.Flags().GetString("datasets")

	boundaryNames := env.builder.Boundaries.Names()
	datasetNames := env.builder.Datasets.Names()
	if boundariesStr != "" || datasetsStr != "" {
		boundaryNames = splitList(boundariesStr)
		datasetNames = splitList(datasetsStr)
	}

	for _, n := range boundaryNames {
		if _, err := env.builder.Boundaries.Get(n); err != nil {
			return nil, nil, err
		}
	}
	for _, n := range datasetNames {
		if _, err := env.builder.Datasets.Get(n); err != nil {
			return nil, nil, err
		}
	}
	return boundaryNames, datasetNames, nil
}

// splitList splits a comma-separated flag value, dropping empty parts.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
