package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/anclora/internal/core/ports/driving"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a new version of the manuscript",
	Long: `Parses the manuscript file and captures it as a new immutable snapshot.

With no analysis session active, existing alerts are migrated to the new
version immediately. While a session is active, the migration is deferred
until the session completes.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if coordinator == nil || parser == nil {
		return errors.New("engine not configured")
	}

	ctx := cmd.Context()
	doc, err := parser.Parse(ctx, args[0])
	if err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	outcome, err := coordinator.HandleDocumentChange(ctx, projectID, doc)
	if err != nil {
		return fmt.Errorf("importing: %w", err)
	}

	cmd.Printf("Imported version %d of project %s.\n", outcome.NewVersion, projectID)
	switch outcome.Action {
	case driving.ChangeMigrated:
		cmd.Println("Existing alerts migrated to the new version.")
	case driving.ChangeDeferred:
		cmd.Println("Analysis session active: alert migration deferred until it completes.")
	case driving.ChangeNone:
		cmd.Println("No alerts to migrate.")
	}
	return nil
}
