package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/seedkeeper/policy"
	"github.com/s0up4200/seedkeeper/reaper"
)

// reapCmd represents the reap command
var reapCmd = &cobra.Command{
	Use:   "reap",
	Short: "Run a single reaper cycle",
	Long: `Remove every torrent that has seeded long enough, once, and exit.
Use --dry-run to only see what would be removed.`,
	PreRunE: initializeApp,
	RunE:    runReap,
}

func runReap(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	keep, err := policy.CompileKeep(cfg.Seed.Keep)
	if err != nil {
		return fmt.Errorf("invalid keep expression: %w", err)
	}

	if err := qbClient.Connect(ctx); err != nil {
		return err
	}

	r := reaper.New(qbClient, newSink(), reaper.Options{
		Policy:      cfg.Seed.Policy(),
		Keep:        keep,
		DryRun:      cfg.Safety.DryRun,
		Concurrency: cfg.Seed.Concurrency,
	}, logger)

	result := r.Run(ctx)
	fmt.Print(reaper.NewConsoleFormatter(cfg.Seed.Policy()).FormatResult(result, cfg.Safety.DryRun))

	if result.ListErr != nil {
		return result.ListErr
	}
	if len(result.Failed) > 0 {
		return fmt.Errorf("failed to remove %d torrents", len(result.Failed))
	}
	return nil
}
