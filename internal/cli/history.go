/*
PURPOSE:
  Defines the 'history' subcommands.
  Lists recorded runs and re-renders the report of one of them.

ARCHITECTURE INTEGRATION:
  - Uses: internal/store, internal/output

ERROR HANDLING:
  - Errors if history is disabled (empty store.path) or the run is unknown.

USAGE:
  forest-extract history -n 5
  forest-extract history show <run-id>
*/

package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/daryltucker/forest-extract/internal/output"
	"github.com/daryltucker/forest-extract/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded benchmark runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.ListRuns(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		formatRunsList(cmd.OutOrStdout(), runs)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the sorted report of a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		recs, err := st.Results(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			return eris.Errorf("no results recorded for run %s", args[0])
		}

		report := output.NewReport()
		for _, rec := range recs {
			report.Add(rec)
		}
		report.Sort()
		return report.Render(cmd.OutOrStdout())
	},
}

func openStore(cmd *cobra.Command) (*store.SQLiteStore, error) {
	if cfg.Store.Path == "" {
		return nil, eris.New("history is disabled (store.path is empty)")
	}
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(cmd.Context()); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// formatRunsList writes a tabular list of runs to out.
func formatRunsList(out io.Writer, runs []store.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSUITE\tCREATED\tRESULTS\tDIRECTORY")
	for _, r := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			r.ID,
			r.Suite,
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Results,
			r.Directory,
		)
	}
	_ = w.Flush()
}

func init() {
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to list")
	rootCmd.AddCommand(historyCmd)
}
