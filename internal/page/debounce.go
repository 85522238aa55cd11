package page

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultQuietWindow is how long mutations must pause before a rescan runs
const DefaultQuietWindow = time.Second

// Debouncer runs fn once after Trigger stops being called for the quiet window
type Debouncer struct {
	clock clock.Clock
	wait  time.Duration
	fn    func()

	mu    sync.Mutex
	timer *clock.Timer
}

// NewDebouncer returns a debouncer that calls fn after wait of inactivity
func NewDebouncer(c clock.Clock, wait time.Duration, fn func()) *Debouncer {
	return &Debouncer{clock: c, wait: wait, fn: fn}
}

// Trigger restarts the quiet window
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = d.clock.AfterFunc(d.wait, d.fn)
}

// Stop cancels a pending call
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
