package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Manage analysis sessions",
	Long: `Controls the lifecycle of an analysis session.

A session binds the external extraction pipeline to one snapshot version.
Document imports made while the session is active never disturb it; their
alert migrations run when the session completes.`,
}

var analyzeStartCmd = &cobra.Command{
	Use:   "start <file>",
	Short: "Snapshot the manuscript and open a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyzeStart,
}

var analyzeRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Mark the session as running",
	Args:  cobra.NoArgs,
	RunE:  runAnalyzeRun,
}

var analyzeCompleteCmd = &cobra.Command{
	Use:   "complete",
	Short: "Complete the session and apply deferred migrations",
	Args:  cobra.NoArgs,
	RunE:  runAnalyzeComplete,
}

var analyzeCancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel a session that has not started running",
	Args:  cobra.NoArgs,
	RunE:  runAnalyzeCancel,
}

func init() {
	analyzeCmd.AddCommand(analyzeStartCmd)
	analyzeCmd.AddCommand(analyzeRunCmd)
	analyzeCmd.AddCommand(analyzeCompleteCmd)
	analyzeCmd.AddCommand(analyzeCancelCmd)
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyzeStart(cmd *cobra.Command, args []string) error {
	if coordinator == nil || parser == nil {
		return errors.New("engine not configured")
	}

	ctx := cmd.Context()
	doc, err := parser.Parse(ctx, args[0])
	if err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	sess, err := coordinator.StartAnalysis(ctx, projectID, doc)
	if err != nil {
		return fmt.Errorf("starting analysis: %w", err)
	}

	cmd.Printf("Session %s started, bound to snapshot version %d.\n", sess.ID, sess.SnapshotVersion)
	return nil
}

func runAnalyzeRun(cmd *cobra.Command, _ []string) error {
	if coordinator == nil {
		return errors.New("engine not configured")
	}

	if err := coordinator.MarkRunning(cmd.Context(), projectID); err != nil {
		return fmt.Errorf("marking session running: %w", err)
	}
	cmd.Println("Session marked as running.")
	return nil
}

func runAnalyzeComplete(cmd *cobra.Command, _ []string) error {
	if coordinator == nil {
		return errors.New("engine not configured")
	}

	if err := coordinator.CompleteAnalysis(cmd.Context(), projectID); err != nil {
		return fmt.Errorf("completing analysis: %w", err)
	}
	cmd.Println("Session completed.")
	return nil
}

func runAnalyzeCancel(cmd *cobra.Command, _ []string) error {
	if coordinator == nil {
		return errors.New("engine not configured")
	}

	if err := coordinator.Invalidate(cmd.Context(), projectID); err != nil {
		return fmt.Errorf("cancelling session: %w", err)
	}
	cmd.Println("Session cancelled.")
	return nil
}
