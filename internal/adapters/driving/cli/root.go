// Package cli is the cobra-based driving adapter for Anclora.
//
// Commands receive their services through the Set* injection functions so the
// package stays free of adapter construction; main wires the concrete stores,
// parser and services before calling Execute.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/anclora/internal/core/ports/driven"
	"github.com/custodia-labs/anclora/internal/core/ports/driving"
	"github.com/custodia-labs/anclora/internal/logger"
)

// version is the build version, overridden at link time.
var version = "dev"

// Injected services. Commands check for nil and fail gracefully when main
// has not wired them.
var (
	coordinator driving.Coordinator
	migrator    driving.Migrator
	parser      driven.DocumentParser
	snapshots   driven.SnapshotStore
	alerts      driven.AlertStore
)

var (
	verbose   bool
	projectID string
)

var rootCmd = &cobra.Command{
	Use:   "anclora",
	Short: "Keep annotations anchored across document versions",
	Long: `Anclora tracks versions of a manuscript as immutable snapshots and
relocates annotation anchors when the text changes, so findings raised
against an old version keep pointing at the right words in the new one.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&projectID, "project", "p", "default", "Project identifier")
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	version = v
}

// SetCoordinator injects the session coordinator.
func SetCoordinator(c driving.Coordinator) {
	coordinator = c
}

// SetMigrator injects the migration processor.
func SetMigrator(m driving.Migrator) {
	migrator = m
}

// SetParser injects the document parser.
func SetParser(p driven.DocumentParser) {
	parser = p
}

// SetStores injects the persistence backends.
func SetStores(s driven.SnapshotStore, a driven.AlertStore) {
	snapshots = s
	alerts = a
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
