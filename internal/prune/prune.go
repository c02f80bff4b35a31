// Package prune removes redundant copies from confirmed duplicate groups.
//
// # Overview
//
// The pruner is an optional final step after duplicate detection. It takes
// confirmed duplicate groups and deletes every path but the first of each
// group. Group paths are sorted, so the lexicographically smallest path is
// the one kept.
//
// # Processing
//
//	Input: []types.DuplicateGroup (confirmed duplicates, sorted paths)
//	    │
//	    ├──► For each group:
//	    │        │
//	    │        ├──► Keep Paths[0] (the original)
//	    │        │
//	    │        └──► For each remaining path:
//	    │                 │
//	    │                 ├──► Acquire exclusive advisory lock
//	    │                 │
//	    │                 ├──► Verify size unchanged since scan
//	    │                 │
//	    │                 └──► Remove
//	    │
//	    └──► Output: Stats (files removed, bytes freed)
//
// # Safety Mechanisms
//
//   - Advisory lock check skips files another process holds open
//   - Size verification skips files rewritten after the scan
//   - Dry-run mode for previewing removals
//
// # Why This Design?
//
//   - Sequential processing (I/O bound, not CPU bound)
//   - Skip-and-report rather than abort (one bad file should not stop a run)
//   - Verbose mode for auditing removals
package prune

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/rendayigit/dupescan/internal/progress"
	"github.com/rendayigit/dupescan/internal/types"
)

// Pruner deletes redundant copies from duplicate groups.
//
// The pruner is designed for single-use: create with New(), call Run() once.
type Pruner struct {
	// Config (immutable, set by New)
	groups       []types.DuplicateGroup // Confirmed duplicate groups to process
	dryRun       bool                   // Preview mode (don't delete)
	verbose      bool                   // Print each result to stdout
	showProgress bool                   // Whether to display progress bar
	errCh        chan error             // Non-fatal errors (locked files, etc.)
}

// New creates a Pruner for the given duplicate groups.
func New(groups []types.DuplicateGroup, dryRun, verbose, showProgress bool, errCh chan error) *Pruner {
	return &Pruner{
		groups:       groups,
		dryRun:       dryRun,
		verbose:      verbose,
		showProgress: showProgress,
		errCh:        errCh,
	}
}

// Stats tracks pruning progress and totals.
type Stats struct {
	TotalFiles    int   // Duplicates eligible for removal
	FilesRemoved  int   // Duplicates actually removed
	TotalSets     int   // Groups given to the pruner
	SetsProcessed int   // Groups walked
	BytesFreed    int64 // Space reclaimed

	startTime time.Time
}

func (s *Stats) String() string {
	pct := 0.0
	if s.TotalFiles > 0 {
		pct = float64(s.FilesRemoved) / float64(s.TotalFiles) * 100
	}
	return fmt.Sprintf("Removed %d/%d files in %d/%d sets (%.0f%%), freed %s in %.1fs",
		s.FilesRemoved, s.TotalFiles,
		s.SetsProcessed, s.TotalSets,
		pct,
		humanize.IBytes(uint64(s.BytesFreed)),
		time.Since(s.startTime).Seconds())
}

// countTargets counts paths eligible for removal (everything after the
// first path of each group).
func (p *Pruner) countTargets() int {
	total := 0
	for _, g := range p.groups {
		if len(g.Paths) < 2 {
			continue
		}
		total += len(g.Paths) - 1
	}
	return total
}

// Run prunes all duplicate groups and returns the totals.
//
// Processing sequence:
//  1. For each group, keep the first path as the original
//  2. For each remaining path, verify the file is unchanged and unlocked
//  3. Remove it (or record the removal in dry-run mode)
//  4. Report skips through the error channel and track totals
func (p *Pruner) Run() *Stats {
	bar := progress.New(p.showProgress, -1)
	st := &Stats{TotalFiles: p.countTargets(), TotalSets: len(p.groups), startTime: time.Now()}
	bar.Describe(st.String()) // Render progress bar immediately

	for _, group := range p.groups {
		if len(group.Paths) < 2 {
			continue
		}

		kept := group.Paths[0]
		for _, target := range group.Paths[1:] {
			result := p.pruneFile(kept, target, group.Size)
			if result.Err != nil {
				p.sendError(fmt.Errorf("%s: %w", target, result.Err))
				continue
			}
			st.FilesRemoved++
			st.BytesFreed += result.BytesFreed
			if p.verbose {
				fmt.Fprintf(os.Stderr, "\r\033[K") // Clear progress line
				_, _ = fmt.Fprintln(os.Stdout, result)
			}
			bar.Describe(st.String())
		}

		st.SetsProcessed++
		bar.Describe(st.String())
	}

	bar.Finish(st.String())
	return st
}

// pruneFile removes one duplicate.
//
// Safety checks:
//   - Acquires exclusive advisory lock (skips if file in use)
//   - Verifies size unchanged since the scan
//   - Returns skip result if either check fails
func (p *Pruner) pruneFile(kept, target string, size int64) *Result {
	// Open the target to acquire an advisory lock. This avoids racing
	// other processes that are still writing the file.
	f, err := os.Open(target)
	if err != nil {
		return &Result{Kept: kept, Target: target, Action: ActionSkipped, Err: err}
	}
	defer func() { _ = f.Close() }()

	// Exclusive non-blocking lock. If the file is in use by another
	// process, skip it rather than wait.
	if err := lockExclusive(f); err != nil {
		return &Result{
			Kept:   kept,
			Target: target,
			Action: ActionSkipped,
			Err:    errors.New("file in use (locked by another process)"),
		}
	}
	// Lock released automatically when the file is closed (deferred above)

	info, err := f.Stat()
	if err != nil {
		return &Result{Kept: kept, Target: target, Action: ActionSkipped, Err: err}
	}
	if info.Size() != size {
		return &Result{
			Kept:   kept,
			Target: target,
			Action: ActionSkipped,
			Err:    errors.New("file changed since scan"),
		}
	}

	if p.dryRun {
		return &Result{Kept: kept, Target: target, Action: ActionRemoved, BytesFreed: size}
	}

	if err := os.Remove(target); err != nil {
		return &Result{Kept: kept, Target: target, Action: ActionSkipped, Err: err}
	}
	return &Result{Kept: kept, Target: target, Action: ActionRemoved, BytesFreed: size}
}

// sendError sends an error to the errors channel if it's not nil.
func (p *Pruner) sendError(err error) {
	if p.errCh != nil {
		p.errCh <- err
	}
}
