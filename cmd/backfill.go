package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ticket-etl/core/remote"
	"ticket-etl/core/sync"
)

var (
	backfillTypes      []string
	backfillLegacyFile string
)

// backfillCmd resolves references that incidents point at but the local
// tables do not contain.
var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Resolve missing references found in the incident table",
	Long: `Scans the incident table for user, company and department references that
have no local row and pulls them from the platform. Keys the platform no
longer knows are reported but never fail the run.

With --legacy-file, references are taken from a JSON export of wide incident
rows (the deprecated shape with embedded reference objects) instead of the
incident table.

Examples:
  # Backfill everything incidents reference
  ticket-etl backfill

  # Only user references
  ticket-etl backfill --types users

  # From a legacy wide-row export
  ticket-etl backfill --legacy-file incidents.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		var results map[string]*sync.Resolution
		if backfillLegacyFile != "" {
			rows, err := readLegacyRows(backfillLegacyFile)
			if err != nil {
				return err
			}
			results, _, err = a.service.BackfillLegacy(ctx, rows)
			if err != nil {
				return err
			}
		} else {
			descs, err := descriptorsFor(backfillTypes)
			if err != nil {
				return err
			}
			results, _, err = a.service.Backfill(ctx, descs)
			if err != nil {
				return err
			}
		}

		for name, res := range results {
			a.logger.Info("Backfill result",
				zap.String("type", name),
				zap.Int("backfilled", len(res.Backfilled)),
				zap.Int("unresolvable", len(res.Unresolvable)),
			)
		}
		return nil
	},
}

func readLegacyRows(path string) ([]remote.Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy export: %w", err)
	}
	var rows []remote.Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse legacy export: %w", err)
	}
	return rows, nil
}

func init() {
	backfillCmd.Flags().StringSliceVar(&backfillTypes, "types", nil, "reference types to backfill (users, companies, departments)")
	backfillCmd.Flags().StringVar(&backfillLegacyFile, "legacy-file", "", "JSON file of wide incident rows to mine instead of the incident table")
	RootCmd.AddCommand(backfillCmd)
}
