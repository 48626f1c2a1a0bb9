package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manasm11/packtui/internal/debugdump"
)

func newDumpIntentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump-intent <path>",
		Short: "Write the current Intent Store to a standalone JSON file",
		Long: `Exports --state's intent snapshot to an explicit path, for building
reproducible test fixtures independent of the rolling --state file other
commands use.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			mgr, err := openManager(ctx)
			if err != nil {
				return err
			}
			if err := debugdump.Save(args[0], mgr.IntentStore(), mgr.Cache()); err != nil {
				return fmt.Errorf("dumping intent: %w", err)
			}
			fmt.Printf("Wrote %d intent(s) to %s\n", mgr.IntentStore().Len(), args[0])
			return nil
		},
	}
	return cmd
}
