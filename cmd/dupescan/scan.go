package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rendayigit/dupescan/internal/config"
	"github.com/rendayigit/dupescan/internal/export"
	"github.com/rendayigit/dupescan/internal/history"
	"github.com/rendayigit/dupescan/internal/progress"
	"github.com/rendayigit/dupescan/internal/scan"
	"github.com/rendayigit/dupescan/internal/types"
)

// scanOptions holds CLI flags for the scan command.
type scanOptions struct {
	extensions   []string
	quickSizeStr string
	chunkSizeStr string
	workers      int
	noProgress   bool
	exportPath   string
	save         bool
	configPath   string
}

// newScanCmd creates the scan subcommand.
func newScanCmd() *cobra.Command {
	opts := &scanOptions{
		workers: runtime.NumCPU(),
	}

	cmd := &cobra.Command{
		Use:   "scan <directory>",
		Short: "Scan a directory for duplicate files",
		Long: `Scans a directory tree and reports groups of files with identical content.

The scan runs in three stages: files are grouped by size, candidates are
narrowed by hashing their first bytes, and survivors are confirmed by
hashing full contents. Press Ctrl-C to cancel a running scan.

Use --export to also write the report to a file; the format follows the
file extension (.json, .csv, or plain text).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args[0], opts)
		},
	}

	// Bind flags to options
	cmd.Flags().StringSliceVarP(&opts.extensions, "ext", "e", nil, "Only scan files with these extensions (e.g. .jpg,.png)")
	cmd.Flags().StringVar(&opts.quickSizeStr, "quick-size", "", "Bytes hashed by the quick pass (512B-64KiB, default from settings)")
	cmd.Flags().StringVar(&opts.chunkSizeStr, "chunk-size", "", "Read buffer for the full pass (1KiB-1MiB, default from settings)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", opts.workers, "Number of parallel hash workers")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable progress output")
	cmd.Flags().StringVarP(&opts.exportPath, "export", "o", "", "Write the report to a file (.json/.csv/.txt)")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Record the result in scan history")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Settings file location (history database lives alongside)")

	return cmd
}

// runScan executes the scan pipeline and renders the report.
func runScan(cmd *cobra.Command, dir string, opts *scanOptions) error {
	cfg, err := loadSettings(opts.configPath)
	if err != nil {
		return err
	}
	quickSize, chunkSize, err := resolveSizes(cfg, opts.quickSizeStr, opts.chunkSizeStr)
	if err != nil {
		return err
	}

	req := scan.Request{
		Root:       dir,
		Extensions: normalizeExtensions(opts.extensions),
		QuickSize:  quickSize,
		ChunkSize:  chunkSize,
	}

	out := cmd.OutOrStdout()
	result, err := runPipeline(req, opts.workers, !opts.noProgress)
	if err != nil {
		return err
	}
	if result == nil {
		fmt.Fprintln(out, "Scan cancelled.")
		return nil
	}

	if result.TotalGroups > 0 {
		if err := export.WriteText(out, result); err != nil {
			return err
		}
	}
	printScanSummary(out, result)

	if opts.exportPath != "" {
		if err := export.WriteFile(opts.exportPath, result); err != nil {
			return err
		}
		fmt.Fprintln(out, green("Results exported to "+opts.exportPath))
	}

	if opts.save || cfg.AutoSave() {
		id, err := saveResult(cfg, result)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved as scan #%d\n", id)
	}

	return nil
}

// runPipeline drives a scan through the controller, rendering stage
// progress as it goes. A nil result with a nil error means the scan was
// cancelled.
func runPipeline(req scan.Request, workers int, showProgress bool) (*types.ScanResult, error) {
	controller := scan.New(workers)
	events := controller.Subscribe()
	if err := controller.Start(req); err != nil {
		return nil, err
	}

	// Ctrl-C requests cooperative cancellation; capture is scoped to the
	// pipeline so a second interrupt after it kills the process normally.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		controller.Stop()
	}()

	return renderEvents(controller, events, showProgress)
}

// renderEvents consumes scan notifications, driving one progress bar per
// stage: a spinner while discovering, percent bars while hashing.
func renderEvents(controller *scan.Controller, events <-chan scan.Notification, showProgress bool) (*types.ScanResult, error) {
	var (
		bar     *progress.Bar
		lastMsg string
		result  *types.ScanResult
		scanErr error
	)

	for n := range events {
		switch v := n.(type) {
		case scan.StageChanged:
			if bar != nil {
				bar.Finish(lastMsg)
			}
			total := int64(100)
			if controller.State() == scan.StateDiscovering {
				total = -1 // Discovery has no known total
			}
			bar = progress.New(showProgress, total)
			bar.Describe(v.Message)
			lastMsg = v.Message
		case scan.Progress:
			if bar != nil {
				bar.Set(uint64(v.Percent))
				bar.Describe(v.Message)
				lastMsg = v.Message
			}
		case scan.Error:
			scanErr = errors.New(v.Message)
		case scan.Completed:
			result = v.Result
		}
	}

	if bar != nil {
		if result != nil {
			bar.Set(100)
			bar.Finish(lastMsg)
		} else {
			fmt.Fprintf(os.Stderr, "\r\033[K") // Clear abandoned progress line
		}
	}
	return result, scanErr
}

// printScanSummary prints the one-line colored result summary.
func printScanSummary(w io.Writer, result *types.ScanResult) {
	if result.TotalGroups == 0 {
		fmt.Fprintln(w, green("No duplicate files found."))
		return
	}
	fmt.Fprintf(w, "Found %s in %s, %s wasted\n",
		bold(fmt.Sprintf("%d duplicate files", result.TotalDuplicates)),
		fmt.Sprintf("%d groups", result.TotalGroups),
		red(humanize.IBytes(uint64(result.WastedSpace))))
}

// saveResult appends the result to the scan history.
func saveResult(cfg *config.Config, result *types.ScanResult) (uint64, error) {
	store, err := history.Open(historyPath(cfg))
	if err != nil {
		return 0, err
	}
	defer func() { _ = store.Close() }()
	return store.Add(result)
}
