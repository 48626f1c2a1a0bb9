package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search packages by name/summary prefix terms",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager(context.Background())
			if err != nil {
				return err
			}
			if err := mgr.SetSearchQuery(context.Background(), args[0]); err != nil {
				return err
			}

			count, _ := mgr.SearchResultCount()
			rows := mgr.List()
			fmt.Printf("%d match(es) for %q:\n\n", count, args[0])
			for _, r := range rows {
				fmt.Printf("  %-8s %-30s\n", r.Status, r.DisplayName)
			}
			return nil
		},
	}
	return cmd
}
