package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rendayigit/dupescan/internal/export"
	"github.com/rendayigit/dupescan/internal/history"
)

// historyOptions holds CLI flags shared by the history subcommands.
type historyOptions struct {
	configPath string
}

// newHistoryCmd creates the history subcommand tree.
func newHistoryCmd() *cobra.Command {
	opts := &historyOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse saved scan results",
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Settings file location (history database lives alongside)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved scans, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runHistoryList(cmd, opts)
			},
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Print the report of a saved scan",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runHistoryShow(cmd, args[0], opts)
			},
		},
		&cobra.Command{
			Use:   "export <id> <file>",
			Short: "Write a saved scan to a file (.json/.csv/.txt)",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runHistoryExport(cmd, args[0], args[1], opts)
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete all saved scans",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runHistoryClear(cmd, opts)
			},
		},
	)

	return cmd
}

// openHistory opens the store that lives next to the settings file.
func openHistory(opts *historyOptions) (*history.Store, error) {
	cfg, err := loadSettings(opts.configPath)
	if err != nil {
		return nil, err
	}
	return history.Open(historyPath(cfg))
}

func runHistoryList(cmd *cobra.Command, opts *historyOptions) error {
	store, err := openHistory(opts)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	summaries, err := store.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No saved scans.")
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(out, "#%d  %s\n", s.ID, s)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, idArg string, opts *historyOptions) error {
	id, err := parseScanID(idArg)
	if err != nil {
		return err
	}

	store, err := openHistory(opts)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	result, err := store.Get(id)
	if err != nil {
		return err
	}
	return export.WriteText(cmd.OutOrStdout(), result)
}

func runHistoryExport(cmd *cobra.Command, idArg, path string, opts *historyOptions) error {
	id, err := parseScanID(idArg)
	if err != nil {
		return err
	}

	store, err := openHistory(opts)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	result, err := store.Get(id)
	if err != nil {
		return err
	}
	if err := export.WriteFile(path, result); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), green("Results exported to "+path))
	return nil
}

func runHistoryClear(cmd *cobra.Command, opts *historyOptions) error {
	store, err := openHistory(opts)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
	return nil
}

// parseScanID parses a numeric scan ID argument.
func parseScanID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid scan id %q", s)
	}
	return id, nil
}
