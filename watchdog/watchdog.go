// Package watchdog is the collaborator contract the fsm engine resets
// on every step. The engine requires only Enable and Reset; expiry
// handling (escalation, reboot, process exit) is the host environment's
// concern, never the engine's.
package watchdog

import (
	"sync"
	"time"
)

// Watchdog is enabled once with a timeout and reset on every step. If
// Reset isn't called again before the timeout elapses, the watchdog has
// expired.
type Watchdog interface {
	Enable(timeout time.Duration)
	Reset()
}

// NoOp returns a Watchdog that never expires — the default for engines
// that don't wire in real deadline enforcement.
func NoOp() Watchdog { return noopWatchdog{} }

type noopWatchdog struct{}

func (noopWatchdog) Enable(time.Duration) {}
func (noopWatchdog) Reset()               {}

// NewTimer returns a Watchdog backed by a time.Timer. onExpire runs in
// its own goroutine if Reset isn't called within the enabled timeout.
// Calling Reset after expiry re-arms the timer.
func NewTimer(onExpire func()) Watchdog {
	return &timerWatchdog{onExpire: onExpire}
}

type timerWatchdog struct {
	mu       sync.Mutex
	timer    *time.Timer
	timeout  time.Duration
	enabled  bool
	onExpire func()
}

func (w *timerWatchdog) Enable(timeout time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.timeout = timeout
	w.enabled = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(timeout, w.fire)
}

func (w *timerWatchdog) fire() {
	w.mu.Lock()
	cb := w.onExpire
	w.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (w *timerWatchdog) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.enabled || w.timer == nil {
		return
	}
	w.timer.Reset(w.timeout)
}
