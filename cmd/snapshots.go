package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	snapshotsTable string
	snapshotsRun   string
	snapshotsKey   string
)

// snapshotsCmd inspects the page snapshots archived during a run. Without
// --key it lists the stored objects; with --key it prints the decompressed
// JSON payload to stdout.
var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List or dump archived page snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		if a.archiver == nil {
			return errors.New("snapshot archiving is disabled, enable it in the archive configuration")
		}

		if snapshotsKey != "" {
			payload, err := a.archiver.Load(ctx, snapshotsKey)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(payload)
			return err
		}

		if snapshotsTable == "" || snapshotsRun == "" {
			return errors.New("either --key or both --table and --run are required")
		}
		keys, err := a.archiver.List(ctx, snapshotsTable, snapshotsRun)
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			fmt.Println("no snapshots found")
			return nil
		}
		for _, key := range keys {
			fmt.Println(key)
		}
		return nil
	},
}

func init() {
	snapshotsCmd.Flags().StringVar(&snapshotsTable, "table", "", "remote table the snapshots were taken from")
	snapshotsCmd.Flags().StringVar(&snapshotsRun, "run", "", "execution id of the run to inspect")
	snapshotsCmd.Flags().StringVar(&snapshotsKey, "key", "", "dump a single snapshot object instead of listing")
	RootCmd.AddCommand(snapshotsCmd)
}
