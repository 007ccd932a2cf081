package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/atlas-cli/internal/choropleth"
)

var renderCmd = &cobra.Command{
	Use:   "render [map...]",
	Short: "Render maps to files",
	Long: `Render named maps into the output directory.

Each map fetches its boundary and dataset (or loads them from the store
if already synced), joins them by region name, and writes the rendered
artifact. Pass map names as arguments or --all for every registered map.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		all, _ := cmd.Flags().GetBool("all")
		outDir, _ := cmd.Flags().GetString("out")
		format, _ := cmd.Flags().GetString("format")
		refresh, _ := cmd.Flags().GetBool("refresh")

		if outDir == "" {
			outDir = cfg.Render.OutDir
		}
		if format == "" {
			format = cfg.Render.Format
		}
		cfg.Render.OutDir = outDir
		cfg.Render.Format = format
		if err := cfg.Validate("render"); err != nil {
			return err
		}
		if !all && len(args) == 0 {
			return eris.New("name at least one map or pass --all")
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()
		env.builder.Refresh = refresh

		names := args
		if all {
			names = env.builder.Maps.Names()
		}

		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return eris.Wrapf(err, "create output dir %s", outDir)
		}

		for _, name := range names {
			artifact, report, err := env.builder.BuildMap(ctx, name)
			if err != nil {
				return eris.Wrapf(err, "render %s", name)
			}

			paths, err := writeArtifact(outDir, name, format, artifact)
			if err != nil {
				return err
			}

			fmt.Printf("%s: %d regions, %d matched", name, len(artifact.Layers), report.Matched)
			if !report.Clean() {
				fmt.Printf(" (%d regions unmatched, %d values unused)",
					len(report.UnmatchedRegions), len(report.UnmatchedValues))
			}
			fmt.Println()
			for _, p := range paths {
				fmt.Printf("  wrote %s\n", p)
			}
		}
		return nil
	},
}

func init() {
	renderCmd.Flags().Bool("all", false, "render every registered map")
	renderCmd.Flags().String("out", "", "output directory (default from config)")
	renderCmd.Flags().String("format", "", "artifact format: html, svg, geojson, or all (default from config)")
	renderCmd.Flags().Bool("refresh", false, "refetch sources instead of using stored rows")
	rootCmd.AddCommand(renderCmd)
}

// writeArtifact encodes the artifact in the requested format (or all of
// them) and writes one file per encoding. Returns the written paths.
func writeArtifact(dir, name, format string, artifact *choropleth.Artifact) ([]string, error) {
	encoders := map[string]func() ([]byte, error){
		"geojson": artifact.GeoJSON,
		"html":    artifact.HTML,
		"svg":     func() ([]byte, error) { return artifact.SVG(0) },
	}

	formats := []string{format}
	if format == "all" {
		formats = []string{"geojson", "html", "svg"}
	}

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		encode, ok := encoders[f]
		if !ok {
			return nil, eris.Errorf("unknown artifact format %q", f)
		}
		data, err := encode()
		if err != nil {
			return nil, eris.Wrapf(err, "encode %s as %s", name, f)
		}
		path := filepath.Join(dir, name+"."+f)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, eris.Wrapf(err, "write %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
