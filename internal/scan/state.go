package scan

// State identifies the controller's position in the scan lifecycle.
//
// A scan moves Idle → Discovering → QuickHashing → FullHashing → Completed.
// Cancelled and Failed are terminal alternatives reached from any running
// state. A new scan may start from any non-running state.
type State int

const (
	StateIdle State = iota
	StateDiscovering
	StateQuickHashing
	StateFullHashing
	StateCompleted
	StateCancelled
	StateFailed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDiscovering:
		return "discovering"
	case StateQuickHashing:
		return "quick-hashing"
	case StateFullHashing:
		return "full-hashing"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// running reports whether the state belongs to an in-flight scan.
func (s State) running() bool {
	switch s {
	case StateDiscovering, StateQuickHashing, StateFullHashing:
		return true
	}
	return false
}
