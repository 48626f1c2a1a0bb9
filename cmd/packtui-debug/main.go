// Command packtui-debug is a scriptable, non-interactive CLI over the same
// internal/manager facade the TUI drives, built as a spf13/cobra tree for
// replaying a sequence of marks and dumping the resulting state.
package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/manasm11/packtui/cmd/packtui-debug/commands"
	"github.com/manasm11/packtui/internal/telemetry"
)

func main() {
	telemetry.Setup()

	ctx := context.Background()
	if err := commands.Execute(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
