package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/anclora/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the project's session and alert state",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if coordinator == nil || alerts == nil {
		return errors.New("engine not configured")
	}

	ctx := cmd.Context()
	view, err := coordinator.View(ctx, projectID)
	if err != nil {
		return fmt.Errorf("reading project state: %w", err)
	}

	cmd.Printf("Project: %s\n", view.ProjectID)
	cmd.Printf("Latest snapshot version: %d\n", view.LatestVersion)
	if view.HasSession {
		cmd.Printf("Session: %s (bound to version %d)\n", view.State, view.BoundVersion)
		if view.Migrating {
			cmd.Println("Alert migration in progress.")
		}
	} else {
		cmd.Println("Session: none")
	}

	list, err := alerts.ListByProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("listing alerts: %w", err)
	}

	counts := make(map[domain.AlertStatus]int)
	for _, alert := range list {
		counts[alert.Status]++
	}
	cmd.Printf("Alerts: %d total\n", len(list))
	for _, status := range []domain.AlertStatus{
		domain.StatusPending,
		domain.StatusNeedsReverification,
		domain.StatusResolved,
		domain.StatusDismissed,
		domain.StatusRelocationFailed,
		domain.StatusObsolete,
	} {
		if counts[status] > 0 {
			cmd.Printf("  %s: %d\n", status, counts[status])
		}
	}
	return nil
}
