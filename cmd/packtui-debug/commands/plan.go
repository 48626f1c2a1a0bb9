package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute and print the changeset for the current marks",
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
			return nil
		},
	}
	return cmd
}
