package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/atlas-cli/internal/atlas"
)

var mapsCmd = &cobra.Command{
	Use:   "maps",
	Short: "List registered maps",
	Long:  "Lists the built-in maps plus any definitions from the configured maps file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, maps, err := initRegistries()
		if err != nil {
			return err
		}
		formatMapDefs(os.Stdout, maps.All())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mapsCmd)
}

// formatMapDefs writes a tabular listing of map definitions to w.
func formatMapDefs(out io.Writer, defs []atlas.MapDef) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tTITLE\tBOUNDARY\tDATASET\tSCALE\tPALETTE")
	_, _ = fmt.Fprintln(w, "----\t-----\t--------\t-------\t-----\t-------")

	for _, def := range defs {
		scale := "-"
		if def.Scale != 0 && def.Scale != 1 {
			scale = fmt.Sprintf("%g", def.Scale)
		}
		palette := def.Palette
		if palette == "" {
			palette = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			def.Name, def.Title, def.Boundary, def.Dataset, scale, palette)
	}
	_ = w.Flush()
}
