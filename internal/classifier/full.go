package classifier

import (
	"context"
	"sync"

	"github.com/rendayigit/dupescan/internal/digest"
	"github.com/rendayigit/dupescan/internal/types"
)

// Full confirms duplicates by hashing entire file contents.
//
// The classifier is designed for single-use: create with NewFull(), call Run() once.
type Full struct {
	// Config (immutable, set by New)
	groups   types.CandidateGroups // Input: candidate groups from quick pass
	provider *digest.Provider      // Digest computation
	workers  int                   // Max concurrent file reads
	progress types.ProgressFunc    // Progress callback

	// Runtime (initialized in Run)
	hashSem  types.Semaphore // Limits concurrent file reads
	resultCh chan fullResult // Fan-in channel: hashers → collector
	tracker  *tracker        // Progress tracking
}

// fullResult pairs a fully hashed path with its digest and size.
type fullResult struct {
	digest string
	size   int64
	path   string
}

// NewFull creates a full classifier over candidate groups.
func NewFull(groups types.CandidateGroups, provider *digest.Provider, workers int, progress types.ProgressFunc) *Full {
	return &Full{
		groups:   groups,
		provider: provider,
		workers:  workers,
		progress: progress,
	}
}

// Run hashes the complete content of every group member and returns
// duplicate groups keyed by full digest, sorted by first path.
//
// Files in distinct candidate groups can never share a full digest (equal
// content implies an equal prefix), so keying by digest alone cannot merge
// groups the quick pass separated.
//
// Returns ctx.Err() when cancelled; partial results are discarded.
func (f *Full) Run(ctx context.Context) ([]types.DuplicateGroup, error) {
	var total int64
	for _, paths := range f.groups {
		total += int64(len(paths))
	}

	// Initialize runtime fields
	f.hashSem = types.NewSemaphore(f.workers)
	f.resultCh = make(chan fullResult, 1000) // Buffer smooths producer/consumer rates
	f.tracker = newTracker("Deep analysis", total, f.progress)

	// Collector goroutine: single consumer groups all hash outputs.
	byDigest := make(map[string][]string)
	sizes := make(map[string]int64)
	collectorWg := sync.WaitGroup{}

	collectorWg.Add(1)
	go func() {
		for r := range f.resultCh {
			byDigest[r.digest] = append(byDigest[r.digest], r.path)
			sizes[r.digest] = r.size
		}
		collectorWg.Done()
	}()

	// Fan out one hash goroutine per file, checking ctx between spawns
	var hashWg sync.WaitGroup
spawn:
	for key, paths := range f.groups {
		for _, path := range paths {
			select {
			case <-ctx.Done():
				break spawn
			default:
			}

			hashWg.Add(1)
			go func(size int64, path string) {
				defer hashWg.Done()
				f.hashSem.Acquire()
				defer f.hashSem.Release()
				if ctx.Err() != nil {
					return
				}

				d, err := f.provider.Full(path)
				f.tracker.bump()
				if err != nil {
					return // Unreadable files drop out of the pipeline silently
				}
				f.resultCh <- fullResult{digest: d, size: size, path: path}
			}(key.Size, path)
		}
	}

	// Shutdown sequence: wait for producers, then signal consumer, then wait for consumer
	hashWg.Wait()
	close(f.resultCh)
	collectorWg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Build sorted duplicate groups, dropping singletons
	var result []types.DuplicateGroup
	for d, paths := range byDigest {
		if len(paths) < 2 {
			continue
		}
		result = append(result, types.NewDuplicateGroup(d, sizes[d], paths))
	}
	return types.SortGroups(result), nil
}
