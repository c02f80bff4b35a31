// Package types provides shared types used across the dupescan codebase.
package types

import (
	"cmp"
	"slices"
)

// TimestampLayout is the layout for scan completion timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// FileRecord holds the path and size of a discovered regular file.
type FileRecord struct {
	Path string
	Size int64
}

// SizeGroups maps an exact byte size to the paths of all discovered files
// with that size. Singleton groups are dropped before the map is returned.
type SizeGroups map[int64][]string

// QuickKey identifies a candidate group: files can only be duplicates when
// both their size and the digest of their leading bytes match.
type QuickKey struct {
	Size   int64
	Digest string
}

// CandidateGroups maps a QuickKey to the paths sharing that size and quick
// digest. Singleton groups are dropped before the map is returned.
type CandidateGroups map[QuickKey][]string

// DuplicateGroup is a set of paths with byte-identical content.
// Paths are always sorted lexicographically; the first path is treated
// as the original copy by reports and by the pruner.
type DuplicateGroup struct {
	Digest string   `json:"digest"`
	Size   int64    `json:"size"`
	Paths  []string `json:"paths"`
}

// NewDuplicateGroup creates a DuplicateGroup with sorted paths.
// The input slice is copied, not mutated.
func NewDuplicateGroup(digest string, size int64, paths []string) DuplicateGroup {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	slices.Sort(sorted)
	return DuplicateGroup{Digest: digest, Size: size, Paths: sorted}
}

// SortGroups orders duplicate groups by their first path for deterministic
// iteration and output.
func SortGroups(groups []DuplicateGroup) []DuplicateGroup {
	return NewSorted(groups, func(g DuplicateGroup) string {
		if len(g.Paths) == 0 {
			return ""
		}
		return g.Paths[0]
	}).Items()
}

// ScanResult summarizes a completed scan.
type ScanResult struct {
	Groups          []DuplicateGroup `json:"groups"`
	TotalGroups     int              `json:"total_groups"`
	TotalDuplicates int              `json:"total_duplicates"`
	WastedSpace     int64            `json:"wasted_space"`
	ScanTime        float64          `json:"scan_time"`
	Directory       string           `json:"directory"`
	Timestamp       string           `json:"timestamp"`
}

// ProgressFunc receives progress updates from pipeline stages.
// Percent is 0-100, or 0 when the stage total is unknown.
type ProgressFunc func(percent int, message string)

// Sorted is an ordered collection that maintains sort order by a key function.
// T is the element type, K is the comparable key type.
// Once constructed, items are guaranteed to be sorted by key.
type Sorted[T any, K cmp.Ordered] struct {
	items   []T
	keyFunc func(T) K
}

// NewSorted creates a sorted collection from items using keyFunc for ordering.
// Items are copied and sorted at construction time.
func NewSorted[T any, K cmp.Ordered](items []T, keyFunc func(T) K) Sorted[T, K] {
	sorted := make([]T, len(items))
	copy(sorted, items)
	slices.SortFunc(sorted, func(a, b T) int {
		return cmp.Compare(keyFunc(a), keyFunc(b))
	})
	return Sorted[T, K]{items: sorted, keyFunc: keyFunc}
}

// Items returns the sorted items.
func (s Sorted[T, K]) Items() []T { return s.items }

// First returns the first item (smallest key), or zero value if empty.
func (s Sorted[T, K]) First() T {
	if len(s.items) == 0 {
		var zero T
		return zero
	}
	return s.items[0]
}

// Len returns the number of items.
func (s Sorted[T, K]) Len() int { return len(s.items) }

// Semaphore implements a counting semaphore using a buffered channel.
// It limits concurrent access to a resource by blocking when the limit is reached.
type Semaphore chan struct{}

// NewSemaphore creates a semaphore that allows up to n concurrent acquisitions.
func NewSemaphore(n int) Semaphore { return make(chan struct{}, n) }

// Acquire blocks until a slot is available, then claims it.
func (s Semaphore) Acquire() { s <- struct{}{} }

// Release frees a slot, unblocking one waiting Acquire call.
func (s Semaphore) Release() { <-s }
