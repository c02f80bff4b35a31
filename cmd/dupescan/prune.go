package main

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rendayigit/dupescan/internal/prune"
	"github.com/rendayigit/dupescan/internal/scan"
)

// pruneOptions holds CLI flags for the prune command.
type pruneOptions struct {
	extensions   []string
	quickSizeStr string
	chunkSizeStr string
	workers      int
	noProgress   bool
	verbose      bool
	dryRun       bool
	force        bool
	configPath   string
}

// newPruneCmd creates the prune subcommand.
func newPruneCmd() *cobra.Command {
	opts := &pruneOptions{
		workers: runtime.NumCPU(),
	}

	cmd := &cobra.Command{
		Use:   "prune <directory>",
		Short: "Scan a directory and delete redundant copies",
		Long: `Scans a directory for duplicate files, then deletes every copy but one
per group. The lexicographically first path of each group is kept.

Files locked by another process or changed since the scan are skipped and
reported. Use --dry-run to preview removals without deleting anything.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrune(cmd, args[0], opts)
		},
	}

	// Bind flags to options
	cmd.Flags().StringSliceVarP(&opts.extensions, "ext", "e", nil, "Only scan files with these extensions (e.g. .jpg,.png)")
	cmd.Flags().StringVar(&opts.quickSizeStr, "quick-size", "", "Bytes hashed by the quick pass (512B-64KiB, default from settings)")
	cmd.Flags().StringVar(&opts.chunkSizeStr, "chunk-size", "", "Read buffer for the full pass (1KiB-1MiB, default from settings)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", opts.workers, "Number of parallel hash workers")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable progress output")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show individual removals")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "Preview removals without deleting")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Skip the confirmation prompt")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Settings file location")

	return cmd
}

// drainErrors consumes errors from a channel and writes them to stderr.
// Clears progress bar line before printing to avoid visual collision.
func drainErrors(errs <-chan error) {
	for err := range errs {
		fmt.Fprintf(os.Stderr, "\r\033[Kerror: %v\n", err)
	}
}

// runPrune executes the scan pipeline, then removes redundant copies.
func runPrune(cmd *cobra.Command, dir string, opts *pruneOptions) error {
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
	showProgress := !opts.noProgress

	result, err := runPipeline(req, opts.workers, showProgress)
	if err != nil {
		return err
	}
	if result == nil {
		fmt.Fprintln(out, "Scan cancelled.")
		return nil
	}
	if result.TotalGroups == 0 {
		fmt.Fprintln(out, green("No duplicate files found."))
		return nil
	}

	reclaimable := humanize.IBytes(uint64(result.WastedSpace))
	fmt.Fprintf(out, "Found %s in %s, %s reclaimable\n",
		bold(fmt.Sprintf("%d duplicate files", result.TotalDuplicates)),
		fmt.Sprintf("%d groups", result.TotalGroups),
		yellow(reclaimable))

	if !opts.force && !opts.dryRun {
		if !confirm(cmd, fmt.Sprintf("Remove %d files, freeing %s?", result.TotalDuplicates, reclaimable)) {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	// Create shared error channel
	errors := make(chan error, 100)
	go drainErrors(errors)
	defer close(errors)

	st := prune.New(result.Groups, opts.dryRun, opts.verbose, showProgress, errors).Run()

	freed := humanize.IBytes(uint64(st.BytesFreed))
	if opts.dryRun {
		fmt.Fprintln(out, yellow(fmt.Sprintf("Dry run: would remove %d files, freeing %s", st.FilesRemoved, freed)))
	} else {
		fmt.Fprintln(out, green(fmt.Sprintf("Removed %d files, freed %s", st.FilesRemoved, freed)))
	}
	return nil
}

// confirm prompts for a yes/no answer, defaulting to no.
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
