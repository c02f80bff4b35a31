// Package aggregator computes summary statistics over duplicate groups.
package aggregator

import (
	"time"

	"github.com/rendayigit/dupescan/internal/types"
)

// Aggregate builds a ScanResult from the final duplicate groups.
//
// Every group member beyond the first is a duplicate, so a group of n
// files contributes n-1 duplicates and size*(n-1) wasted bytes. Sizes are
// carried on the groups themselves; no filesystem access happens here.
func Aggregate(groups []types.DuplicateGroup, directory string, elapsed time.Duration, completedAt time.Time) *types.ScanResult {
	if groups == nil {
		groups = []types.DuplicateGroup{}
	}

	totalDuplicates := 0
	var wasted int64
	for _, g := range groups {
		extra := len(g.Paths) - 1
		if extra < 1 {
			continue
		}
		totalDuplicates += extra
		wasted += g.Size * int64(extra)
	}

	return &types.ScanResult{
		Groups:          groups,
		TotalGroups:     len(groups),
		TotalDuplicates: totalDuplicates,
		WastedSpace:     wasted,
		ScanTime:        elapsed.Seconds(),
		Directory:       directory,
		Timestamp:       completedAt.Format(types.TimestampLayout),
	}
}
