package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manasm11/packtui/internal/manager"
	"github.com/manasm11/packtui/internal/pkgdb"
)

func newToggleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggle <fullname>",
		Short: "Toggle a package's mark, cascading dependency changes",
		Long: `Simulates pressing Space on the named package in the TUI: marks or
unmarks it and reports any dependencies the toggle engine pulled in or
released along with it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			mgr, err := openManager(ctx)
			if err != nil {
				return err
			}

			pkg, ok := mgr.Cache().Get(args[0])
			if !ok {
				return fmt.Errorf("package %q not found", args[0])
			}

			result, err := mgr.Toggle(ctx, pkg.Handle)
			if err != nil {
				return fmt.Errorf("toggle: %w", err)
			}

			switch {
			case result.IsMarked():
				fmt.Printf("Marked: %s\n", args[0])
				printRelated(mgr, "Also marked", result.Additional)
			case result.IsUnmarked():
				fmt.Printf("Unmarked: %s\n", args[0])
				printRelated(mgr, "Also unmarked", result.AlsoUnmarked)
			default:
				fmt.Printf("%s is a dependency — unmark the package that requires it\n", args[0])
			}

			return saveIntent(mgr)
		},
	}
	return cmd
}

func printRelated(mgr *manager.Manager, label string, handles []pkgdb.Handle) {
	if len(handles) == 0 {
		return
	}
	fmt.Printf("%s (%d):\n", label, len(handles))
	for _, h := range handles {
		name := "(unknown)"
		if pkg, ok := mgr.Cache().GetByHandle(h); ok {
			name = pkg.Fullname
		}
		fmt.Printf("  %s\n", name)
	}
}
