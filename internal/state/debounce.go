package state

import (
	"sync"
	"time"

	"tripboard/internal/observability"
)

// DefaultDebounceWindow collapses a burst of raw change-feed events into a
// single authoritative refetch.
const DefaultDebounceWindow = 120 * time.Millisecond

// Debouncer coalesces repeated triggers per key with a trailing-edge window:
// each new trigger restarts the timer, and the action fires once, one window
// after the last trigger.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	timers map[string]*time.Timer
}

// NewDebouncer creates a debouncer. A zero window falls back to the default.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Debouncer{window: window, timers: make(map[string]*time.Timer)}
}

// Schedule arms (or re-arms) the action for key using the default window.
func (d *Debouncer) Schedule(key string, action func()) {
	d.ScheduleAfter(key, action, d.window)
}

// ScheduleAfter arms (or re-arms) the action for key with an explicit window.
func (d *Debouncer) ScheduleAfter(key string, action func(), window time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[key]; ok {
		if t.Stop() {
			observability.IncCoalescedRefresh()
		}
	}
	d.timers[key] = time.AfterFunc(window, func() {
		d.mu.Lock()
		delete(d.timers, key)
		d.mu.Unlock()
		action()
	})
}

// Cancel drops any pending action for key.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[key]; ok {
		t.Stop()
		delete(d.timers, key)
	}
}

// Stop cancels every pending action.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}
