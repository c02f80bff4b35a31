package classifier

import (
	"context"
	"sync"

	"github.com/rendayigit/dupescan/internal/digest"
	"github.com/rendayigit/dupescan/internal/types"
)

// Quick splits size groups into candidate groups by quick digest.
//
// The classifier is designed for single-use: create with NewQuick(), call Run() once.
type Quick struct {
	// Config (immutable, set by New)
	groups   types.SizeGroups   // Input: size groups from discovery
	provider *digest.Provider   // Digest computation
	workers  int                // Max concurrent file reads
	progress types.ProgressFunc // Progress callback

	// Runtime (initialized in Run)
	hashSem  types.Semaphore  // Limits concurrent file reads
	resultCh chan quickResult // Fan-in channel: hashers → collector
	tracker  *tracker         // Progress tracking
}

// quickResult pairs a hashed path with its grouping key fields.
type quickResult struct {
	size   int64
	digest string
	path   string
}

// NewQuick creates a quick classifier over size groups.
func NewQuick(groups types.SizeGroups, provider *digest.Provider, workers int, progress types.ProgressFunc) *Quick {
	return &Quick{
		groups:   groups,
		provider: provider,
		workers:  workers,
		progress: progress,
	}
}

// Run hashes the leading bytes of every group member and returns candidate
// groups keyed by (size, quick digest), singletons dropped.
//
// Returns ctx.Err() when cancelled; partial results are discarded.
func (q *Quick) Run(ctx context.Context) (types.CandidateGroups, error) {
	var total int64
	for _, paths := range q.groups {
		total += int64(len(paths))
	}

	// Initialize runtime fields
	q.hashSem = types.NewSemaphore(q.workers)
	q.resultCh = make(chan quickResult, 1000) // Buffer smooths producer/consumer rates
	q.tracker = newTracker("Quick analysis", total, q.progress)

	// Collector goroutine: single consumer groups all hash outputs.
	grouped := make(types.CandidateGroups)
	collectorWg := sync.WaitGroup{}

	collectorWg.Add(1)
	go func() {
		for r := range q.resultCh {
			key := types.QuickKey{Size: r.size, Digest: r.digest}
			grouped[key] = append(grouped[key], r.path)
		}
		collectorWg.Done()
	}()

	// Fan out one hash goroutine per file, checking ctx between spawns
	var hashWg sync.WaitGroup
spawn:
	for size, paths := range q.groups {
		for _, path := range paths {
			select {
			case <-ctx.Done():
				break spawn
			default:
			}

			hashWg.Add(1)
			go func(size int64, path string) {
				defer hashWg.Done()
				q.hashSem.Acquire()
				defer q.hashSem.Release()
				if ctx.Err() != nil {
					return
				}

				d, err := q.provider.Quick(path)
				q.tracker.bump()
				if err != nil {
					return // Unreadable files drop out of the pipeline silently
				}
				q.resultCh <- quickResult{size: size, digest: d, path: path}
			}(size, path)
		}
	}

	// Shutdown sequence: wait for producers, then signal consumer, then wait for consumer
	hashWg.Wait()
	close(q.resultCh)
	collectorWg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Singleton candidates cannot be duplicates
	for key, paths := range grouped {
		if len(paths) < 2 {
			delete(grouped, key)
		}
	}
	return grouped, nil
}
