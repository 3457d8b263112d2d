package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"florence-hq/vesta/pkg/cli"
	"florence-hq/vesta/pkg/config"
	"florence-hq/vesta/pkg/kvstore"
	"florence-hq/vesta/pkg/review/skiplist"
)

var skipCmd = &cobra.Command{
	Use:   "skip",
	Short: "Manage the skip registry",
	Long: `Manage the registry of engagements the user dismissed.

A skipped engagement is never prompted for again. These commands open the
configured storage backend directly, without a running daemon.`,
}

var skipAddCmd = &cobra.Command{
	Use:   "add <engagement-id>...",
	Short: "Mark engagements as skipped",
	Long: `Mark one or more engagements as skipped. Marking an
already-skipped engagement is a no-op.

Examples:
  florence skip add care-session-42
  florence skip add s1 s2 s3`,
	Args: cobra.MinimumNArgs(1),
	RunE: skipAdd,
}

var skipCheckCmd = &cobra.Command{
	Use:   "check <engagement-id>",
	Short: "Check whether an engagement is skipped",
	Args:  cobra.ExactArgs(1),
	RunE:  skipCheck,
}

var skipListFlags struct {
	format string
}

var skipListCmd = &cobra.Command{
	Use:   "list",
	Short: "List skipped engagements",
	Long: `List the skipped engagement IDs in lexicographic order.

Examples:
  florence skip list
  florence skip list --format json`,
	RunE: skipList,
}

var skipClearFlags struct {
	yes bool
}

var skipClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the skip registry",
	Long: `Remove every entry from the skip registry. Cleared engagements
become eligible for prompts again. The command refuses to run without
--yes.

Examples:
  florence skip clear --yes`,
	RunE: skipClear,
}

var skipImportFlags struct {
	file string
}

var skipImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk-import skipped engagements from a file",
	Long: `Import engagement IDs from a file, one per line. Blank lines and
lines starting with # are ignored. Already-skipped IDs are counted but
not rewritten.

Examples:
  florence skip import --file skips.txt`,
	RunE: skipImport,
}

func init() {
	rootCmd.AddCommand(skipCmd)
	skipCmd.AddCommand(skipAddCmd)
	skipCmd.AddCommand(skipCheckCmd)
	skipCmd.AddCommand(skipListCmd)
	skipCmd.AddCommand(skipClearCmd)
	skipCmd.AddCommand(skipImportCmd)

	skipListCmd.Flags().StringVar(&skipListFlags.format, "format", "text", "output format: text, json")
	skipClearCmd.Flags().BoolVar(&skipClearFlags.yes, "yes", false, "confirm clearing the skip registry")
	skipImportCmd.Flags().StringVar(&skipImportFlags.file, "file", "", "file with one engagement ID per line (required)")
	skipImportCmd.MarkFlagRequired("file")
}

// openSkips opens the skip registry over the configured state store. The
// caller closes the returned store.
func openSkips(ctx context.Context, cfg *config.Config) (*skiplist.Registry, kvstore.Store, error) {
	store, err := openStateStore(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open state store: %w", err)
	}
	reg, err := skiplist.New(store, nil)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return reg, store, nil
}

func skipAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	reg, store, err := openSkips(ctx, cfg)
	if err != nil {
		return cli.NewCommandError("skip add", err)
	}
	defer store.Close()

	for _, id := range args {
		if err := reg.MarkSkipped(ctx, id); err != nil {
			return cli.NewCommandError("skip add", err)
		}
		fmt.Printf("✓ %s skipped\n", id)
	}
	return nil
}

func skipCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reg, store, err := openSkips(context.Background(), cfg)
	if err != nil {
		return cli.NewCommandError("skip check", err)
	}
	defer store.Close()

	if reg.IsSkipped(args[0]) {
		fmt.Printf("✓ %s is skipped\n", args[0])
	} else {
		fmt.Printf("✗ %s is not skipped\n", args[0])
	}
	return nil
}

// skipListing is the JSON shape of a skip list run.
type skipListing struct {
	Count   int      `json:"count"`
	Entries []string `json:"entries"`
}

func skipList(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(skipListFlags.format)
	if err != nil {
		return cli.NewCommandError("skip list", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reg, store, err := openSkips(context.Background(), cfg)
	if err != nil {
		return cli.NewCommandError("skip list", err)
	}
	defer store.Close()

	entries := reg.Entries()

	if format == cli.FormatJSON {
		listing := skipListing{Count: len(entries), Entries: entries}
		if listing.Entries == nil {
			listing.Entries = []string{}
		}
		if err := cli.NewFormatter(format).FormatTo(os.Stdout, listing); err != nil {
			return cli.NewCommandError("skip list", err)
		}
		return nil
	}

	if len(entries) == 0 {
		fmt.Println("Skip registry is empty.")
		return nil
	}

	fmt.Printf("Skipped engagements (%d):\n", len(entries))
	for _, id := range entries {
		fmt.Printf("  %s\n", id)
	}
	return nil
}

func skipClear(cmd *cobra.Command, args []string) error {
	if !skipClearFlags.yes {
		return cli.NewCommandError("skip clear", fmt.Errorf("refusing to clear the skip registry without --yes"))
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	reg, store, err := openSkips(ctx, cfg)
	if err != nil {
		return cli.NewCommandError("skip clear", err)
	}
	defer store.Close()

	count := reg.Len()
	if err := reg.Clear(ctx); err != nil {
		return cli.NewCommandError("skip clear", err)
	}

	fmt.Printf("✓ Skip registry cleared (%d entries removed)\n", count)
	return nil
}

func skipImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ids, err := readSkipFile(skipImportFlags.file)
	if err != nil {
		return cli.NewCommandError("skip import", err)
	}
	if len(ids) == 0 {
		fmt.Println("No engagement IDs to import.")
		return nil
	}

	ctx := context.Background()
	reg, store, err := openSkips(ctx, cfg)
	if err != nil {
		return cli.NewCommandError("skip import", err)
	}
	defer store.Close()

	progress := cli.NewProgressReporter(os.Stdout)
	progress.Start(int64(len(ids)))

	var added int
	for i, id := range ids {
		if !reg.IsSkipped(id) {
			if err := reg.MarkSkipped(ctx, id); err != nil {
				progress.Error(err)
				return cli.NewCommandError("skip import", err)
			}
			added++
		}
		progress.Update(int64(i + 1))
	}
	progress.Finish()

	fmt.Printf("✓ Imported %d engagement(s) (%d new, %d already skipped)\n",
		len(ids), added, len(ids)-added)
	return nil
}

// readSkipFile reads engagement IDs from path, one per line. Blank lines and
// # comments are ignored.
func readSkipFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}
	return ids, nil
}
