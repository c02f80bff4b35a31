package scan

import "github.com/rendayigit/dupescan/internal/types"

// Notification is the interface implemented by all scan notifications.
// Concrete types: Progress, StageChanged, Error, Completed.
type Notification interface {
	isNotification()
}

// Progress reports per-file advancement within a stage.
// Percent is 0-100, or 0 during discovery where the total is unknown.
type Progress struct {
	Percent int
	Message string
}

// StageChanged announces entry into a pipeline stage.
type StageChanged struct {
	Message string
}

// Error reports a scan-fatal failure. Emitted at most once per scan.
type Error struct {
	Message string
}

// Completed delivers the result of a successful scan.
// Emitted exactly once per successful scan and never otherwise.
type Completed struct {
	Result *types.ScanResult
}

func (Progress) isNotification()     {}
func (StageChanged) isNotification() {}
func (Error) isNotification()        {}
func (Completed) isNotification()    {}
