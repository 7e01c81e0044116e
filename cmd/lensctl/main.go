// lensctl is the operator CLI: seed demo data, export aggregate snapshots.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shoplens/internal/config"
	"shoplens/internal/dataset"
	"shoplens/internal/export"
	"shoplens/internal/pkg/logging"
	"shoplens/internal/seeder"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lensctl",
		Short:         "Operator tooling for the shoplens analytics engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSeedCmd(), newExportCmd())
	return root
}

func newSeedCmd() *cobra.Command {
	var sessionCount int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a deterministic demo dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig()
			logger := logging.NewLogger(cfg)
			return seeder.NewSeeder(logger, sessionCount).Run(cfg.DataDirectory)
		},
	}
	cmd.Flags().IntVar(&sessionCount, "sessions", 2000, "number of sessions to generate")
	return cmd
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Compute aggregate tables and upsert them into sqlite",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig()
			logger := logging.NewLogger(cfg)

			ds, err := dataset.Load(logger, cfg.DataDirectory)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(cfg.StoragePath, 0o755); err != nil {
				return fmt.Errorf("creating storage directory %s: %w", cfg.StoragePath, err)
			}
			exporter, err := export.NewExporter(logger, cfg.GetDatabasePath())
			if err != nil {
				return err
			}
			return exporter.Snapshot(ds)
		},
	}
}
