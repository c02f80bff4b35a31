// Package classifier refines candidate groups by content digest.
//
// # Architecture Overview
//
// Classification runs in two passes over the groups produced by discovery.
// The quick pass hashes only the leading bytes of each file, splitting size
// groups into (size, quick digest) candidate groups at a fraction of the
// I/O cost of full hashing. The full pass then hashes entire contents, and
// only files that survive both passes with a shared digest are duplicates.
//
// Groups only ever split across passes, never merge: the quick digest
// covers a prefix of the full range, so files with different quick digests
// cannot share a full digest.
//
// # Concurrency Model
//
// Both passes share the same shape:
//
//  1. HASH GOROUTINES (fan-out)
//     - One goroutine per file, concurrency limited by semaphore
//     - Each: acquires semaphore → hashes → reports progress → sends result
//     - Unreadable files drop out silently but still count as processed
//
//  2. COLLECTOR GOROUTINE (fan-in)
//     - Single goroutine that drains resultCh into the group map
//     - Grouping is order-independent, so fan-in order does not matter
//
//  3. MAIN GOROUTINE (orchestrator)
//     - Spawns hash goroutines, checking ctx between files
//     - Waits for hashers (hashWg.Wait)
//     - Closes resultCh to signal collector
//     - Waits for collector, then drops singleton groups
//
// # Data Flow
//
//	Run() starts
//	    │
//	    ├──► spawn collector goroutine (reads resultCh)
//	    │
//	    ├──► for each group member:
//	    │        ├──► ctx cancelled? → stop spawning
//	    │        └──► goroutine: acquire sem → hash → send result
//	    │
//	    ├──► hashWg.Wait() [all files hashed]
//	    ├──► close(resultCh) [signal collector to finish]
//	    ├──► collectorWg.Wait() [collector drained channel]
//	    │
//	    └──► drop singletons → return refined groups
//
// # Why This Design?
//
//   - Semaphore bounds concurrent file reads (prevents fd exhaustion)
//   - Single collector avoids map synchronization
//   - Buffered channel (1000) smooths producer/consumer rate differences
//   - Cancellation checks sit between units of work, so a stop request
//     takes effect without tearing down in-flight hashes
package classifier

import (
	"fmt"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/rendayigit/dupescan/internal/types"
)

// tracker counts processed files and reports percent progress.
// Safe for concurrent use by hash goroutines.
type tracker struct {
	label     string
	total     int64
	processed atomic.Int64
	progress  types.ProgressFunc
}

func newTracker(label string, total int64, progress types.ProgressFunc) *tracker {
	if progress == nil {
		progress = func(int, string) {}
	}
	return &tracker{label: label, total: total, progress: progress}
}

// bump records one processed file. Files count whether or not their hash
// succeeded, so the percentage always reaches 100.
func (t *tracker) bump() {
	done := t.processed.Add(1)
	if t.total == 0 {
		return
	}
	percent := int(done * 100 / t.total)
	t.progress(percent, fmt.Sprintf("%s: %s/%s", t.label, humanize.Comma(done), humanize.Comma(t.total)))
}
