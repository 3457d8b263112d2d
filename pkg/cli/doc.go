/*
Package cli provides command-line interface utilities for the florence
binary.

The cli package includes output formatters, progress reporters, typed
command errors with exit-code mapping, and signal handling helpers used by
the florence command.

Output Formatting:

The cli package supports text and JSON output for displaying command
results:

	formatter := cli.NewFormatter(cli.FormatJSON)
	data := MyCommandResult{...}
	if err := formatter.FormatTo(os.Stdout, data); err != nil {
		return err
	}

Progress Reporting:

For long-running operations such as bulk skip imports, use the progress
reporter:

	progress := cli.NewProgressReporter(os.Stdout)
	progress.Start(totalItems)
	for i := 0; i < totalItems; i++ {
		// Do work
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Errors and Exit Codes:

Commands return *ConfigError for configuration problems and *CommandError
for execution failures; ExitCode maps either to the process exit code
(config errors exit 2, command errors carry their own code):

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
