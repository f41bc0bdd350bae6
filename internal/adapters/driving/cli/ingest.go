package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/anclora/internal/adapters/driven/extraction/jsonfile"
	"github.com/custodia-labs/anclora/internal/core/domain"
)

var analyzeIngestCmd = &cobra.Command{
	Use:   "ingest <findings.json>",
	Short: "Store extraction pipeline findings as alerts",
	Long: `Reads a findings file produced by the extraction pipeline and stores
each finding as a pending alert, anchored in the snapshot the current
session is bound to (or the latest snapshot when no session is active).`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyzeIngest,
}

func init() {
	analyzeCmd.AddCommand(analyzeIngestCmd)
}

func runAnalyzeIngest(cmd *cobra.Command, args []string) error {
	if coordinator == nil || snapshots == nil || alerts == nil {
		return errors.New("engine not configured")
	}

	ctx := cmd.Context()
	view, err := coordinator.View(ctx, projectID)
	if err != nil {
		return fmt.Errorf("reading project state: %w", err)
	}

	var snap *domain.Snapshot
	if view.HasSession {
		snap, err = snapshots.Get(ctx, projectID, view.BoundVersion)
	} else {
		snap, err = snapshots.Latest(ctx, projectID)
	}
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}

	findings, err := jsonfile.New(args[0]).Extract(ctx, snap)
	if err != nil {
		return fmt.Errorf("extracting findings: %w", err)
	}

	now := time.Now().UTC()
	for _, finding := range findings {
		alert := &domain.Alert{
			ID:          uuid.NewString(),
			ProjectID:   projectID,
			Description: finding.Description,
			Severity:    finding.Severity,
			Status:      domain.StatusPending,
			Anchor:      finding.Anchor,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := alerts.Save(ctx, alert); err != nil {
			return fmt.Errorf("saving alert: %w", err)
		}
	}

	cmd.Printf("Ingested %d findings against snapshot version %d.\n", len(findings), snap.Version)
	return nil
}
