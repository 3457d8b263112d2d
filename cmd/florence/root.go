package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"florence-hq/vesta/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "florence",
	Short: "Florence Vesta - review-prompt eligibility and throttling daemon",
	Long: `Florence Vesta decides whether to interrupt a user with a review prompt.

It evaluates triggers against a layered admission gate and a persisted
dismissal registry, providing:
  - Multi-level temporal gating (debounce, per-run latch, multi-day cooldown)
  - Persistent deduplication through a user-dismissal registry
  - Role-dependent candidate selection (initiator vs. participant)
  - Graceful degradation when engagement fetches fail

For more information, visit: https://github.com/florence-hq/vesta`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "florence.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Disable default completion command (we'll add our own)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
