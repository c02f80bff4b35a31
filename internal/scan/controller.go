// Package scan orchestrates the duplicate detection pipeline.
//
// # Overview
//
// The Controller runs the staged pipeline (discover → quick classify →
// full classify → aggregate) in a background goroutine and reports to
// subscribers through notification channels. One scan runs at a time;
// starting a second scan while one is in flight is an error, while a
// finished controller (completed, cancelled, or failed) accepts a new
// scan.
//
// # Notification Semantics
//
// Subscribers receive StageChanged at every stage boundary, Progress
// while stages work, and exactly one of: Completed (success) or Error
// (traversal failure). A cancelled scan emits neither and discards its
// partial state. The subscriber channel is closed when the scan ends,
// whatever the outcome, so ranging over it terminates.
//
// Sends never block the pipeline. Progress notifications are dropped
// when a subscriber's buffer is full; stage, error, and completion
// notifications evict the oldest queued notification instead, so a
// subscriber that eventually drains cannot miss them.
//
// # Cancellation
//
// Stop cancels the scan context. Stages observe the context between
// units of work, so the scan winds down cooperatively rather than
// tearing down mid-hash.
package scan

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/rendayigit/dupescan/internal/aggregator"
	"github.com/rendayigit/dupescan/internal/classifier"
	"github.com/rendayigit/dupescan/internal/digest"
	"github.com/rendayigit/dupescan/internal/discoverer"
)

// ErrScanActive is returned by Start when a scan is already running.
var ErrScanActive = errors.New("scan already in progress")

// subscriberBuffer is the per-subscriber notification queue length.
const subscriberBuffer = 256

// subscriber wraps a notification channel with idempotent close.
type subscriber struct {
	ch        chan Notification
	closeOnce sync.Once
}

func (s *subscriber) close() {
	s.closeOnce.Do(func() { close(s.ch) })
}

// trySend queues n without blocking, dropping it when the buffer is full.
func (s *subscriber) trySend(n Notification) bool {
	select {
	case s.ch <- n:
		return true
	default:
		return false
	}
}

// mustSend queues n, evicting the oldest queued notification when full.
func (s *subscriber) mustSend(n Notification) {
	for {
		select {
		case s.ch <- n:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

// Request describes one scan.
type Request struct {
	Root       string   // Directory to scan
	Extensions []string // Optional extension allow-list
	QuickSize  int64    // Leading bytes hashed by the quick pass (0 = default)
	ChunkSize  int64    // Read buffer for the full pass (0 = default)
}

// Controller runs scans and fans notifications out to subscribers.
// All methods are safe for concurrent use.
type Controller struct {
	workers int

	mu          sync.Mutex
	state       State
	cancel      context.CancelFunc
	subscribers []*subscriber
}

// New creates a Controller. Workers bounds concurrent file reads in the
// hash stages; values below 1 select runtime.NumCPU().
func New(workers int) *Controller {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Controller{workers: workers, state: StateIdle}
}

// Subscribe registers a notification channel for the next (or current)
// scan. The channel is closed when the scan ends.
func (c *Controller) Subscribe() <-chan Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	sub := &subscriber{ch: make(chan Notification, subscriberBuffer)}
	c.subscribers = append(c.subscribers, sub)
	return sub.ch
}

// Unsubscribe removes a channel registered with Subscribe and closes it.
func (c *Controller) Unsubscribe(ch <-chan Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, sub := range c.subscribers {
		if ch == sub.ch {
			c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
			sub.close()
			return
		}
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start launches a scan in a background goroutine.
// Returns ErrScanActive when a scan is already running.
func (c *Controller) Start(req Request) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.running() {
		return ErrScanActive
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.state = StateDiscovering

	go func() {
		defer cancel()
		c.runScan(ctx, req)
	}()
	return nil
}

// Stop requests cancellation of the active scan. Safe to call at any
// time, including when no scan is running.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

// runScan executes the pipeline stages in order.
//
// Stage failures route through finish: cancellation ends the scan
// silently, anything else emits one Error. Success aggregates and emits
// one Completed. Subscriber channels close when the scan ends.
func (c *Controller) runScan(ctx context.Context, req Request) {
	defer c.closeSubscribers()

	start := time.Now()
	provider := digest.New(req.QuickSize, req.ChunkSize)

	c.setStage(StateDiscovering, "Discovering files...")
	sizeGroups, err := discoverer.New(req.Root, req.Extensions, c.onProgress).Run(ctx)
	if err != nil {
		c.finish(err)
		return
	}

	c.setStage(StateQuickHashing, "Performing quick analysis...")
	candidates, err := classifier.NewQuick(sizeGroups, provider, c.workers, c.onProgress).Run(ctx)
	if err != nil {
		c.finish(err)
		return
	}

	c.setStage(StateFullHashing, "Performing deep analysis...")
	groups, err := classifier.NewFull(candidates, provider, c.workers, c.onProgress).Run(ctx)
	if err != nil {
		c.finish(err)
		return
	}

	result := aggregator.Aggregate(groups, req.Root, time.Since(start), time.Now())

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateCompleted
	c.cancel = nil
	c.broadcastLocked(Completed{Result: result})
}

// finish records a stage failure. Cancellation ends in Cancelled with no
// notification; any other error is a traversal failure that emits one
// Error and ends in Failed.
func (c *Controller) finish(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancel = nil
	if errors.Is(err, context.Canceled) {
		c.state = StateCancelled
		return
	}
	c.state = StateFailed
	c.broadcastLocked(Error{Message: err.Error()})
}

// setStage moves the controller into a stage and announces it.
func (c *Controller) setStage(state State, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
	c.broadcastLocked(StageChanged{Message: message})
}

// onProgress relays stage progress to subscribers.
func (c *Controller) onProgress(percent int, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.broadcastLocked(Progress{Percent: percent, Message: message})
}

// broadcastLocked delivers n to every subscriber. Callers hold c.mu, so
// sends can never race a channel close.
func (c *Controller) broadcastLocked(n Notification) {
	_, droppable := n.(Progress)
	for _, sub := range c.subscribers {
		if droppable {
			sub.trySend(n)
		} else {
			sub.mustSend(n)
		}
	}
}

// closeSubscribers closes every subscriber channel, signaling end of scan.
func (c *Controller) closeSubscribers() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sub := range c.subscribers {
		sub.close()
	}
	c.subscribers = nil
}
