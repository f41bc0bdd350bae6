package cli

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/anclora/internal/adapters/driven/watch"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Watch the manuscript and import every saved change",
	Long: `Watches the manuscript file and imports a new snapshot after each save,
debouncing rapid editor write bursts. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce,
		"Quiet period required before a save triggers an import")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if coordinator == nil || parser == nil {
		return errors.New("engine not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(args[0], projectID, parser, coordinator, watch.WithDebounce(watchDebounce))
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Stop()

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}

	cmd.Printf("Watching %s (project %s). Press Ctrl+C to stop.\n", args[0], projectID)
	<-ctx.Done()
	cmd.Println("Stopped.")
	return nil
}
