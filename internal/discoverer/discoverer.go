// Package discoverer walks a directory tree and groups files by size.
//
// # Architecture Overview
//
// Discovery is the first stage of the duplicate detection pipeline. Files
// with a unique size cannot have a duplicate, so grouping by exact byte
// size eliminates most files before any content is read.
//
// # Concurrency Model
//
// The walk itself is parallelized by fastwalk, which invokes the entry
// callback from multiple goroutines. Matched files are therefore funneled
// through a channel to a single collector:
//
//  1. WALK CALLBACKS (fan-out, driven by fastwalk)
//     - Filter each entry (regular, non-empty, extension match)
//     - Send surviving records to resultCh
//     - Check ctx between entries for cooperative cancellation
//
//  2. COLLECTOR GOROUTINE (fan-in)
//     - Single goroutine that drains resultCh into the size map
//     - Runs until resultCh is closed
//
// # Data Flow
//
//	Run() starts
//	    │
//	    ├──► validate root (must exist and be a directory)
//	    │
//	    ├──► spawn collector goroutine (reads resultCh)
//	    │
//	    ├──► fastwalk.Walk(root)
//	    │        └──► per entry: filter → count → send FileRecord
//	    │
//	    ├──► close(resultCh) [signal collector to finish]
//	    ├──► collectorWg.Wait() [collector drained channel]
//	    │
//	    └──► drop singleton size groups → return SizeGroups
//
// # Error Semantics
//
// A root that cannot be walked fails the stage. Individual entries that
// cannot be read or statted are skipped silently; files routinely vanish
// or change permissions mid-walk and must not abort discovery.
package discoverer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"github.com/dustin/go-humanize"
	"github.com/rendayigit/dupescan/internal/types"
)

// progressEvery is the file-count interval between progress updates.
const progressEvery = 100

// Discoverer finds candidate files beneath a root and groups them by size.
//
// The discoverer is designed for single-use: create with New(), call Run() once.
type Discoverer struct {
	// Config (immutable, set by New)
	root       string             // Directory to walk
	extensions []string           // Lowercased suffix allow-list (empty = all files)
	progress   types.ProgressFunc // Progress callback (never nil)

	// Runtime (initialized in Run)
	resultCh chan types.FileRecord // Fan-in channel: walk callbacks → collector
	found    atomic.Int64          // Files accepted so far (all callbacks)
}

// New creates a Discoverer for the given root.
// Extensions are matched as case-insensitive path suffixes; an empty list
// disables filtering. A nil progress callback is replaced with a no-op.
func New(root string, extensions []string, progress types.ProgressFunc) *Discoverer {
	lowered := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		lowered = append(lowered, strings.ToLower(ext))
	}
	if progress == nil {
		progress = func(int, string) {}
	}
	return &Discoverer{
		root:       root,
		extensions: lowered,
		progress:   progress,
	}
}

// Run walks the tree and returns size groups with two or more members.
//
// Coordination sequence:
//  1. Validate the root (missing or non-directory roots fail immediately)
//  2. Start collector goroutine (drains resultCh → size map)
//  3. Walk the tree (fastwalk fans out across goroutines)
//  4. Close resultCh, wait for the collector to drain
//  5. Drop singleton groups and return
//
// Returns ctx.Err() when cancelled mid-walk.
func (d *Discoverer) Run(ctx context.Context) (types.SizeGroups, error) {
	absRoot, err := filepath.Abs(d.root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s: not a directory", absRoot)
	}

	d.resultCh = make(chan types.FileRecord, 1000) // Buffer smooths producer/consumer rates

	// Collector goroutine: single consumer aggregates all callback outputs.
	// Runs until resultCh is closed, then signals completion via collectorWg.
	groups := make(types.SizeGroups)
	collectorWg := sync.WaitGroup{}

	collectorWg.Add(1)
	go func() {
		for r := range d.resultCh {
			groups[r.Size] = append(groups[r.Size], r.Path)
		}
		collectorWg.Done()
	}()

	conf := &fastwalk.Config{
		Follow: false, // Never follow symlinks
	}
	walkErr := fastwalk.Walk(conf, absRoot, func(path string, entry fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			// A root we cannot read is a traversal failure; anything
			// deeper is skipped silently.
			if path == absRoot {
				return err
			}
			return nil
		}

		return d.processEntry(path, entry)
	})

	// Shutdown sequence: walk done, signal collector, wait for drain
	close(d.resultCh)
	collectorWg.Wait()

	if walkErr != nil {
		return nil, walkErr
	}

	// Singleton sizes cannot contain duplicates
	for size, paths := range groups {
		if len(paths) < 2 {
			delete(groups, size)
		}
	}
	return groups, nil
}

// processEntry filters a single walk entry and sends accepted files to the
// collector. Returns nil for entries that should be skipped; fastwalk
// treats a nil return as "continue walking".
func (d *Discoverer) processEntry(path string, entry fs.DirEntry) error {
	if entry.IsDir() {
		return nil
	}

	// Skip non-regular files (symlinks, devices, sockets, etc.)
	if !entry.Type().IsRegular() {
		return nil
	}

	if !d.matchesExtension(path) {
		return nil
	}

	// Info() may trigger an additional stat call (platform-dependent)
	info, err := entry.Info()
	if err != nil {
		return nil // Skip files we can't stat (race condition, permissions)
	}

	// Empty files are trivially identical and never interesting
	size := info.Size()
	if size == 0 {
		return nil
	}

	d.resultCh <- types.FileRecord{Path: path, Size: size}

	if n := d.found.Add(1); n%progressEvery == 0 {
		d.progress(0, fmt.Sprintf("Discovered %s files", humanize.Comma(n)))
	}
	return nil
}

// matchesExtension reports whether the path passes the extension allow-list.
// Matching is a case-insensitive suffix test against the full path.
func (d *Discoverer) matchesExtension(path string) bool {
	if len(d.extensions) == 0 {
		return true
	}
	lowered := strings.ToLower(path)
	for _, ext := range d.extensions {
		if strings.HasSuffix(lowered, ext) {
			return true
		}
	}
	return false
}
