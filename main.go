// Command anclora is the document-version sync and anchor relocation engine.
package main

import (
	"fmt"
	"os"

	configfile "github.com/custodia-labs/anclora/internal/adapters/driven/config/file"
	"github.com/custodia-labs/anclora/internal/adapters/driven/parser/plaintext"
	"github.com/custodia-labs/anclora/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/anclora/internal/adapters/driving/cli"
	"github.com/custodia-labs/anclora/internal/core/services"
	"github.com/custodia-labs/anclora/internal/relocate"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	store, err := sqlite.NewStore(config.GetString("data.dir"))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	var opts []relocate.Option
	if t := config.GetFloat("relocation.structural_threshold"); t > 0 {
		opts = append(opts, relocate.WithStructuralThreshold(t))
	}
	if t := config.GetFloat("relocation.context_threshold"); t > 0 {
		opts = append(opts, relocate.WithContextThreshold(t))
	}
	if n := config.GetInt("relocation.context_edge"); n > 0 {
		opts = append(opts, relocate.WithContextEdge(n))
	}
	if n := config.GetInt("relocation.context_gap"); n > 0 {
		opts = append(opts, relocate.WithContextGap(n))
	}
	cascade := relocate.New(opts...)

	snapshots := store.SnapshotStore()
	alerts := store.AlertStore()
	migrator := services.NewMigrator(alerts, services.WithCascade(cascade))
	coordinator := services.NewSessionCoordinator(snapshots, migrator,
		services.WithSessionStore(store.SessionStore()))

	cli.SetVersion(version)
	cli.SetStores(snapshots, alerts)
	cli.SetParser(plaintext.New())
	cli.SetMigrator(migrator)
	cli.SetCoordinator(coordinator)

	return cli.Execute()
}
