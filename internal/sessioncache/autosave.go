package sessioncache

import (
	"sync"
	"time"
)

// Autosaver debounces cache writes on the trailing edge: each Schedule call
// restarts the timer, so a burst of edits produces a single flush once the
// burst goes quiet for the configured delay.
type Autosaver struct {
	mu    sync.Mutex
	delay time.Duration
	flush func()
	timer *time.Timer
}

func NewAutosaver(delay time.Duration, flush func()) *Autosaver {
	return &Autosaver{delay: delay, flush: flush}
}

// Schedule arms (or re-arms) the flush timer.
func (a *Autosaver) Schedule() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, a.fire)
}

func (a *Autosaver) fire() {
	a.mu.Lock()
	a.timer = nil
	a.mu.Unlock()
	a.flush()
}

// FlushNow cancels any pending timer and flushes synchronously.
func (a *Autosaver) FlushNow() {
	a.Cancel()
	a.flush()
}

// Cancel drops any pending flush without running it.
func (a *Autosaver) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}
