package session

import (
	"sync"
	"time"
)

// InactivityTimer owns the single pending auto-logout callback for a session.
// It is deliberately ignorant of where activity signals come from (UI events,
// CLI commands, tests) so it can be exercised without a real interface.
//
// Invariants: at most one timer is pending at any moment, and a suspended
// timer never fires. Touch while suspended is a no-op; Resume schedules
// fresh from the current instant, so backgrounded time is not counted.
type InactivityTimer struct {
	mu        sync.Mutex
	window    time.Duration
	fire      func()
	timer     *time.Timer
	suspended bool
}

// NewInactivityTimer creates a timer that calls fire after window of
// inactivity. Nothing is scheduled until the first Touch.
func NewInactivityTimer(window time.Duration, fire func()) *InactivityTimer {
	return &InactivityTimer{window: window, fire: fire}
}

// Touch pushes the deadline to now + window, replacing any pending timer.
func (t *InactivityTimer) Touch() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.suspended {
		return
	}
	t.stopLocked()
	t.timer = time.AfterFunc(t.window, t.fire)
}

// Suspend cancels the pending deadline without firing it. Used when the
// client loses foreground visibility.
func (t *InactivityTimer) Suspend() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.suspended = true
	t.stopLocked()
}

// Resume reschedules a fresh deadline from the current time.
func (t *InactivityTimer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.suspended = false
	t.stopLocked()
	t.timer = time.AfterFunc(t.window, t.fire)
}

// Cancel stops the pending deadline entirely. Used at logout.
func (t *InactivityTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.suspended = false
	t.stopLocked()
}

func (t *InactivityTimer) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
