package commands

import (
	"context"
	"fmt"

	"github.com/manasm11/packtui/internal/debugdump"
	"github.com/manasm11/packtui/internal/manager"
	"github.com/manasm11/packtui/internal/pkgdb"
	"github.com/manasm11/packtui/internal/planner"
)

// openManager loads the live apt cache and restores any intent persisted
// from a prior invocation's --state dump, so successive packtui-debug
// commands compose into the same flow the TUI would replay interactively.
func openManager(ctx context.Context) (*manager.Manager, error) {
	backend := pkgdb.NewShellBackend()
	mgr := manager.New(backend)
	if err := mgr.Load(ctx); err != nil {
		return nil, fmt.Errorf("loading cache: %w", err)
	}
	if err := debugdump.Load(statePath, mgr.IntentStore(), mgr.Cache()); err != nil {
		return nil, fmt.Errorf("restoring intent from %s: %w", statePath, err)
	}
	mgr.RebuildList()
	return mgr, nil
}

// saveIntent persists mgr's current intent store back to --state so the
// next invocation picks up where this one left off.
func saveIntent(mgr *manager.Manager) error {
	return debugdump.Save(statePath, mgr.IntentStore(), mgr.Cache())
}

// printPlan renders a computed changeset the way the TUI's preview would,
// resolving fullnames through mgr's cache for display.
func printPlan(mgr *manager.Manager, planned *planner.Planned) {
	if planned == nil || len(planned.Changes) == 0 {
		fmt.Println("No changes planned.")
		return
	}

	fmt.Printf("%d change(s), %d bytes to download:\n\n", len(planned.Changes), planned.DownloadSize)
	for _, c := range planned.Changes {
		name := c.Fullname
		if pkg, ok := mgr.Cache().GetByHandle(c.Handle); ok {
			name = pkg.Fullname
		}
		fmt.Printf("  %-10s %-30s (%s)\n", c.Action, name, c.Reason)
	}

	if len(planned.Errors) > 0 {
		fmt.Println("\nConflicts:")
		for _, e := range planned.Errors {
			fmt.Printf("  ! %s\n", e)
		}
	}
}
