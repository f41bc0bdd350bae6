package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate all alerts to the latest snapshot",
	Long: `Runs the relocation cascade for every alert of the project against the
latest snapshot. Alerts already migrated to that version are replayed from
the ledger without being touched again.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if migrator == nil || snapshots == nil {
		return errors.New("engine not configured")
	}

	ctx := cmd.Context()
	target, err := snapshots.Latest(ctx, projectID)
	if err != nil {
		return fmt.Errorf("loading latest snapshot: %w", err)
	}

	outcomes, err := migrator.MigrateProject(ctx, projectID, target)
	if err != nil {
		return fmt.Errorf("migrating: %w", err)
	}
	if len(outcomes) == 0 {
		cmd.Println("No alerts to migrate.")
		return nil
	}

	cmd.Printf("Migrated %d alerts to version %d:\n", len(outcomes), target.Version)
	for _, o := range outcomes {
		switch {
		case o.Err != "":
			cmd.Printf("  %s: error: %s\n", o.AlertID, o.Err)
		case o.Replayed:
			cmd.Printf("  %s: already migrated (%s)\n", o.AlertID, o.Status)
		case o.Result.Found:
			cmd.Printf("  %s: %s (confidence %.2f) -> %s\n", o.AlertID, o.Result.Method, o.Result.Confidence, o.Status)
		default:
			cmd.Printf("  %s: not found -> %s\n", o.AlertID, o.Status)
		}
	}
	return nil
}
