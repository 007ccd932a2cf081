package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/atlas-cli/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	Long:  "Displays which boundaries and datasets are stored and when they were last fetched.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("fetch"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		syncs, err := st.Syncs(ctx)
		if err != nil {
			return eris.Wrap(err, "status")
		}

		if len(syncs) == 0 {
			zap.L().Info("no syncs found, run 'atlas-cli fetch' to sync sources")
			return nil
		}

		formatSyncs(os.Stdout, syncs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// formatSyncs writes a tabular representation of sync records to w.
func formatSyncs(out io.Writer, syncs []store.SyncInfo) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tKIND\tROWS\tSYNCED\tAGE")
	_, _ = fmt.Fprintln(w, "----\t----\t----\t------\t---")

	for _, s := range syncs {
		age := time.Since(s.SyncedAt).Round(time.Second)
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			s.Name,
			s.Kind,
			s.Rows,
			s.SyncedAt.Format("2006-01-02 15:04"),
			age,
		)
	}
	_ = w.Flush()
}
