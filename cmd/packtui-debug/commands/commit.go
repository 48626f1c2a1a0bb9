package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manasm11/packtui/internal/progress"
)

func newCommitCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Plan and apply the current marks",
		Long: `Computes the changeset for the current marks and, unless --dry-run is
set, executes it via dpkg/apt exactly like the TUI's commit key.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			mgr, err := openManager(ctx)
			if err != nil {
				return err
			}

			planned, err := mgr.ComputePlan(ctx)
			if err != nil {
				return fmt.Errorf("plan: %w", err)
			}
			printPlan(mgr, planned)

			if dryRun {
				fmt.Println("\n(dry run — no changes applied)")
				return saveIntent(mgr)
			}
			if len(planned.Errors) > 0 {
				return fmt.Errorf("refusing to commit a plan with unresolved conflicts")
			}

			sink := progress.NewSharedState(0)
			if err := mgr.Commit(ctx, sink); err != nil {
				return fmt.Errorf("commit: %w", err)
			}
			fmt.Println("\nCommit complete.")
			return saveIntent(mgr)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute and print the plan without applying it")
	return cmd
}
