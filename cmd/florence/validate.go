package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"florence-hq/vesta/pkg/cli"
	"florence-hq/vesta/pkg/config"
)

var validateFlags struct {
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate the configuration file without starting the daemon.

The file is parsed strictly (unknown keys are rejected), environment
overrides and defaults are applied on top, and every field is checked.
All problems are reported together.

Examples:
  # Validate the default config
  florence validate

  # Validate a specific file
  florence validate --config /etc/florence/florence.yaml

  # Machine-readable report
  florence validate --format json`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

// validationReport is the JSON shape of a validate run.
type validationReport struct {
	Valid  bool     `json:"valid"`
	Path   string   `json:"path"`
	Errors []string `json:"errors,omitempty"`
}

func validateConfig(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(validateFlags.format)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		var verr config.ValidationError
		if !errors.As(err, &verr) {
			return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
		}

		report := validationReport{Path: cfgFile}
		for _, fe := range verr.Errors {
			report.Errors = append(report.Errors, fe.Error())
		}

		if format == cli.FormatJSON {
			if err := cli.NewFormatter(format).FormatTo(os.Stdout, report); err != nil {
				return cli.NewCommandError("validate", err)
			}
		} else {
			fmt.Printf("✗ Configuration invalid: %s\n\n", cfgFile)
			for _, msg := range report.Errors {
				fmt.Printf("  ✗ %s\n", msg)
			}
		}
		return cli.NewConfigError("", fmt.Sprintf("%d validation error(s)", len(verr.Errors)))
	}

	if format == cli.FormatJSON {
		if err := cli.NewFormatter(format).FormatTo(os.Stdout, validationReport{Valid: true, Path: cfgFile}); err != nil {
			return cli.NewCommandError("validate", err)
		}
		return nil
	}

	fmt.Printf("✓ Configuration valid: %s\n\n", cfgFile)
	fmt.Printf("Engine:      debounce=%s cooldown=%s fetch_timeout=%s\n",
		intervalString(cfg.Engine.Debounce),
		intervalString(cfg.Engine.Cooldown),
		cfg.Engine.FetchTimeout)
	fmt.Printf("Storage:     %s\n", cfg.Storage.Backend)
	fmt.Printf("Engagements: %s\n", cfg.Engagements.Backend)
	fmt.Printf("Sink:        %s\n", cfg.Sink.Type)
	fmt.Printf("Server:      %s (allow_clear=%t)\n", cfg.Server.ListenAddress, cfg.Server.AllowClear)
	return nil
}

// intervalString renders a guard interval; negatives mean the guard is off.
func intervalString(d time.Duration) string {
	if d < 0 {
		return "disabled"
	}
	return d.String()
}
