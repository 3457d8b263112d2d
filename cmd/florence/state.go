package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"florence-hq/vesta/pkg/cli"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect or mutate persisted review state",
	Long: `Inspect or mutate the persisted review state offline.

These commands open the configured storage backend directly, without a
running daemon. State written here is what the daemon loads on its next
start.`,
}

var stateShowFlags struct {
	format string
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the persisted engine state",
	Long: `Show the persisted engine state: last prompt time, cooldown window,
debug bypass, and skip registry size.

Examples:
  # Human-readable state
  florence state show

  # Machine-readable state
  florence state show --format json`,
	RunE: stateShow,
}

var stateClearFlags struct {
	yes bool
}

var stateClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all persisted review state",
	Long: `Clear all persisted review state: the prompt timestamp, the skip
registry, and the debug bypass override.

Clearing makes the next decision cycle behave as if no prompt was ever
shown. The command refuses to run without --yes.

Examples:
  florence state clear --yes`,
	RunE: stateClear,
}

var stateBypassCmd = &cobra.Command{
	Use:   "bypass on|off",
	Short: "Toggle the persisted debug bypass",
	Long: `Toggle the debug bypass and persist the override.

With the bypass on, every decision cycle is admitted past the lifetime
latch, the cooldown, and the skip registry; only the debounce applies.
The override survives restarts and takes precedence over the configured
value until switched off.

Examples:
  florence state bypass on
  florence state bypass off`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE:      stateBypass,
}

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateClearCmd)
	stateCmd.AddCommand(stateBypassCmd)

	stateShowCmd.Flags().StringVar(&stateShowFlags.format, "format", "text", "output format: text, json")
	stateClearCmd.Flags().BoolVar(&stateClearFlags.yes, "yes", false, "confirm clearing persisted state")
}

func stateShow(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(stateShowFlags.format)
	if err != nil {
		return cli.NewCommandError("state show", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng, err := openEngine(context.Background(), cfg)
	if err != nil {
		return cli.NewCommandError("state show", err)
	}
	defer eng.Close()

	st := eng.State()

	if format == cli.FormatJSON {
		if err := cli.NewFormatter(format).FormatTo(os.Stdout, st); err != nil {
			return cli.NewCommandError("state show", err)
		}
		return nil
	}

	fmt.Printf("State (%s backend):\n", cfg.Storage.Backend)
	fmt.Printf("  Phase:          %s\n", st.Phase)
	if st.Gate.LastPromptAt.IsZero() {
		fmt.Println("  Last prompt at: never")
	} else {
		fmt.Printf("  Last prompt at: %s\n", st.Gate.LastPromptAt.Format(time.RFC3339))
		if cfg.Engine.Cooldown > 0 {
			next := st.Gate.LastPromptAt.Add(cfg.Engine.Cooldown)
			if time.Now().Before(next) {
				fmt.Printf("  Cooldown until: %s\n", next.Format(time.RFC3339))
			} else {
				fmt.Println("  Cooldown:       expired")
			}
		}
	}
	fmt.Printf("  Debug bypass:   %s\n", onOff(st.Gate.DebugBypass))
	fmt.Printf("  Skipped:        %d engagement(s)\n", st.SkippedCount)
	return nil
}

func stateClear(cmd *cobra.Command, args []string) error {
	if !stateClearFlags.yes {
		return cli.NewCommandError("state clear", fmt.Errorf("refusing to clear persisted state without --yes"))
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	eng, err := openEngine(ctx, cfg)
	if err != nil {
		return cli.NewCommandError("state clear", err)
	}
	defer eng.Close()

	if err := eng.ClearAll(ctx); err != nil {
		return cli.NewCommandError("state clear", err)
	}

	fmt.Println("✓ Persisted review state cleared")
	return nil
}

func stateBypass(cmd *cobra.Command, args []string) error {
	var on bool
	switch args[0] {
	case "on":
		on = true
	case "off":
		on = false
	default:
		return fmt.Errorf("invalid argument %q: must be 'on' or 'off'", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	eng, err := openEngine(ctx, cfg)
	if err != nil {
		return cli.NewCommandError("state bypass", err)
	}
	defer eng.Close()

	if err := eng.SetDebugBypass(ctx, on); err != nil {
		return cli.NewCommandError("state bypass", err)
	}

	if on {
		fmt.Println("✓ Debug bypass enabled (persisted, survives restarts)")
	} else {
		fmt.Println("✓ Debug bypass disabled (configured value applies on next start)")
	}
	return nil
}

// onOff renders a boolean the way operators read toggles.
func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
