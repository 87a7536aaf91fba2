package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"ticket-etl/feature/executions"
)

var executionsLimit int

// executionsCmd prints recent execution summaries.
var executionsCmd = &cobra.Command{
	Use:   "executions",
	Short: "Show recent synchronization runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(context.Background())
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		views, err := executions.NewService(a.ledger, a.logger).Recent(executionsLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tMODE\tSTATUS\tFETCHED\tINS\tUPD\tUNCH\tAPI OK%\tDURATION")
		for _, v := range views {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%.1f\t%s\n",
				v.StartedAt.Format(time.RFC3339),
				v.Mode,
				v.Status,
				v.RecordsFetched,
				v.RecordsInserted,
				v.RecordsUpdated,
				v.RecordsUnchanged,
				v.SuccessRate,
				time.Duration(v.DurationSeconds*float64(time.Second)).Round(time.Millisecond),
			)
		}
		return w.Flush()
	},
}

func init() {
	executionsCmd.Flags().IntVar(&executionsLimit, "limit", 10, "number of runs to show")
	RootCmd.AddCommand(executionsCmd)
}
