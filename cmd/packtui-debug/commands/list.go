package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manasm11/packtui/internal/projection"
)

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [upgradable|installed|not-installed|marked|all]",
		Short: "List packages under a filter category",
		Long: `List packages the way the TUI's list view would render them under the
given category filter (default: all).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := projection.CategoryAll
			if len(args) == 1 {
				var err error
				filter, err = parseCategory(args[0])
				if err != nil {
					return err
				}
			}

			mgr, err := openManager(context.Background())
			if err != nil {
				return err
			}
			mgr.ApplyFilter(filter)

			rows := mgr.List()
			fmt.Printf("%d package(s):\n\n", len(rows))
			for _, r := range rows {
				fmt.Printf("  %-8s %-30s %-10s -> %-10s\n", r.Status, r.DisplayName, dash(r.InstalledVersion), dash(r.CandidateVersion))
			}
			return nil
		},
	}
	return cmd
}

func parseCategory(s string) (projection.Category, error) {
	switch s {
	case "all":
		return projection.CategoryAll, nil
	case "upgradable":
		return projection.CategoryUpgradable, nil
	case "installed":
		return projection.CategoryInstalled, nil
	case "not-installed":
		return projection.CategoryNotInstalled, nil
	case "marked":
		return projection.CategoryMarkedChanges, nil
	default:
		return 0, fmt.Errorf("unknown filter %q (want upgradable|installed|not-installed|marked|all)", s)
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
