package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/atlas-cli/internal/dataset"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List dataset sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, datasets, _, err := initRegistries()
		if err != nil {
			return err
		}
		formatDatasets(os.Stdout, datasets.All())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
}

// formatDatasets writes a tabular listing of datasets to w.
func formatDatasets(out io.Writer, datasets []dataset.Dataset) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tLABEL\tBOUNDARY\tDESCRIPTION")
	_, _ = fmt.Fprintln(w, "----\t-----\t--------\t-----------")

	for _, d := range datasets {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Name(), d.Label(), d.Boundary(), d.Description())
	}
	_ = w.Flush()
}
