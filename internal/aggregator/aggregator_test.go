package aggregator

import (
	"testing"
	"time"

	"github.com/rendayigit/dupescan/internal/types"
)

// =============================================================================
// Section 1: Statistics Tests
// =============================================================================

// TestAggregateStatistics tests group, duplicate, and wasted-space math.
func TestAggregateStatistics(t *testing.T) {
	groups := []types.DuplicateGroup{
		types.NewDuplicateGroup("d1", 100, []string{"/a/1", "/a/2", "/a/3"}), // 2 duplicates, 200 wasted
		types.NewDuplicateGroup("d2", 50, []string{"/b/1", "/b/2"}),          // 1 duplicate, 50 wasted
	}

	completed := time.Date(2026, 8, 24, 13, 5, 7, 0, time.Local)
	result := Aggregate(groups, "/scans/photos", 2500*time.Millisecond, completed)

	if result.TotalGroups != 2 {
		t.Errorf("TotalGroups = %d, want 2", result.TotalGroups)
	}
	if result.TotalDuplicates != 3 {
		t.Errorf("TotalDuplicates = %d, want 3", result.TotalDuplicates)
	}
	if result.WastedSpace != 250 {
		t.Errorf("WastedSpace = %d, want 250", result.WastedSpace)
	}
	if result.ScanTime != 2.5 {
		t.Errorf("ScanTime = %f, want 2.5", result.ScanTime)
	}
	if result.Directory != "/scans/photos" {
		t.Errorf("Directory = %q, want %q", result.Directory, "/scans/photos")
	}
	if result.Timestamp != "2026-08-24 13:05:07" {
		t.Errorf("Timestamp = %q, want %q", result.Timestamp, "2026-08-24 13:05:07")
	}
	if len(result.Groups) != 2 {
		t.Errorf("len(Groups) = %d, want 2", len(result.Groups))
	}
}

// TestAggregateEmpty tests the zero-duplicate result shape.
func TestAggregateEmpty(t *testing.T) {
	result := Aggregate(nil, "/empty", time.Second, time.Now())

	if result.TotalGroups != 0 || result.TotalDuplicates != 0 || result.WastedSpace != 0 {
		t.Errorf("empty scan should have zero stats, got %+v", result)
	}
	if result.Groups == nil {
		t.Error("Groups should be an empty slice, not nil")
	}
}

// TestAggregateLargeSizes tests that wasted space does not overflow for
// multi-gigabyte groups.
func TestAggregateLargeSizes(t *testing.T) {
	const fourGiB = int64(4) << 30
	groups := []types.DuplicateGroup{
		types.NewDuplicateGroup("d1", fourGiB, []string{"/v/1", "/v/2", "/v/3"}),
	}

	result := Aggregate(groups, "/volumes", time.Minute, time.Now())

	if result.WastedSpace != 2*fourGiB {
		t.Errorf("WastedSpace = %d, want %d", result.WastedSpace, 2*fourGiB)
	}
	if result.ScanTime != 60.0 {
		t.Errorf("ScanTime = %f, want 60.0", result.ScanTime)
	}
}
