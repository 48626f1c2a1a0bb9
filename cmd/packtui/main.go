// Command packtui is the interactive terminal package manager's entrypoint:
// preflight → cache load → bubbletea program.
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/manasm11/packtui/internal/manager"
	"github.com/manasm11/packtui/internal/pkgdb"
	"github.com/manasm11/packtui/internal/preflight"
	"github.com/manasm11/packtui/internal/telemetry"
	"github.com/manasm11/packtui/internal/tui"
)

func main() {
	telemetry.Setup()

	results := preflight.RunAll()
	allFound := true
	for _, r := range results {
		if r.Found {
			fmt.Printf("  ✓ %s (%s)\n", r.Name, r.Version)
		} else {
			fmt.Printf("  ✗ %s — not found: %s\n", r.Name, r.Error)
			allFound = false
		}
	}
	if !allFound {
		fmt.Fprintln(os.Stderr, "\npacktui requires dpkg-query, apt-cache, and apt-get on PATH.")
		os.Exit(1)
	}
	fmt.Println()

	backend := pkgdb.NewShellBackend()
	mgr := manager.New(backend)

	ctx := context.Background()
	if err := mgr.Load(ctx); err != nil {
		log.Error().Err(err).Msg("initial cache load failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	app := tui.New(mgr)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error().Err(err).Msg("bubbletea program exited with error")
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}
