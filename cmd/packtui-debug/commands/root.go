// Package commands implements packtui-debug's cobra command tree: one file
// per subcommand, persistent flags shared via package-level vars.
package commands

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	statePath  string
	verbose    bool
	jsonOutput bool
)

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return newRootCommand().ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "packtui-debug",
		Short: "Scriptable CLI over packtui's core state machine, without the TUI",
		Long: `packtui-debug drives internal/manager directly for scripted testing,
replaying the same mark-plan-commit flow the interactive TUI exposes, and
persisting marks between invocations via a debug_state.json intent dump.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&statePath, "state", "debug_state.json", "intent-store dump file shared across invocations")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "accepted but has no effect: every subcommand prints plain text")

	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newSearchCommand())
	rootCmd.AddCommand(newToggleCommand())
	rootCmd.AddCommand(newPlanCommand())
	rootCmd.AddCommand(newCommitCommand())
	rootCmd.AddCommand(newDumpIntentCommand())

	return rootCmd
}
