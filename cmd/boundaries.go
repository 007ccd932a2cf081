package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/atlas-cli/internal/boundary"
)

var boundariesCmd = &cobra.Command{
	Use:   "boundaries",
	Short: "List boundary sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		boundaries, _, _, err := initRegistries()
		if err != nil {
			return err
		}
		formatBoundaries(os.Stdout, boundaries.All())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(boundariesCmd)
}

// formatBoundaries writes a tabular listing of boundary sources to w.
func formatBoundaries(out io.Writer, sources []boundary.Source) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tDESCRIPTION\tURL")
	_, _ = fmt.Fprintln(w, "----\t-----------\t---")

	for _, s := range sources {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name(), s.Description(), s.URL())
	}
	_ = w.Flush()
}
