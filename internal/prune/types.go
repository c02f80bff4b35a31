package prune

import (
	"fmt"
	"strings"
)

// ActionType describes the action taken for a single duplicate.
type ActionType int

const (
	ActionRemoved ActionType = iota
	ActionSkipped            // Skipped due to error
)

// Result describes the outcome of pruning one duplicate.
type Result struct {
	Kept       string     // Path preserved as the original
	Target     string     // Duplicate path processed
	Action     ActionType // Removed or Skipped
	BytesFreed int64      // Bytes reclaimed (0 if skipped)
	Err        error      // Non-nil if skipped
}

// String formats the result for display.
func (r *Result) String() string {
	switch r.Action {
	case ActionRemoved:
		return fmt.Sprintf("Removed %s (kept %s)", escapePath(r.Target), escapePath(r.Kept))
	case ActionSkipped:
		return fmt.Sprintf("skipped %s: %v", escapePath(r.Target), r.Err)
	default:
		return fmt.Sprintf("Unknown action for %s", escapePath(r.Target))
	}
}

// escapePath escapes special characters in paths for safe terminal output.
func escapePath(path string) string {
	r := strings.NewReplacer(
		"\t", "\\t",
		"\n", "\\n",
		"\r", "\\r",
	)
	return r.Replace(path)
}
