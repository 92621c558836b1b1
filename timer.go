package callcore

import (
	"sync"
	"time"
)

// CallTimeout is how long a one-to-one call rings before the dispatcher
// is told the remote party never responded.
const CallTimeout = 45 * time.Second

// ringTimer is a fire-once countdown for the ring/response timeout.
//
// The fire callback holds only plain data (the call identity and the
// long-lived dispatcher), never the owning session, so the session can be
// destroyed or relocated while the timer is armed. Stop guarantees the
// callback will not run afterwards: the armed flag is cleared under the
// same mutex the firing path checks it under.
type ringTimer struct {
	mu    sync.Mutex
	fire  func()
	timer *time.Timer
	armed bool
}

func newRingTimer(fire func()) *ringTimer {
	return &ringTimer{fire: fire}
}

// Start arms the countdown. Starting an already armed timer is a no-op;
// it never double-arms.
func (t *ringTimer) Start(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.armed {
		return
	}
	t.armed = true
	t.timer = time.AfterFunc(d, t.fired)
}

func (t *ringTimer) fired() {
	t.mu.Lock()
	if !t.armed {
		// Stopped after the runtime timer expired but before this
		// goroutine took the lock. Swallow the fire.
		t.mu.Unlock()
		return
	}
	t.armed = false
	fire := t.fire
	t.mu.Unlock()

	fire()
}

// Stop disarms the countdown. After Stop returns the fire callback will
// not be invoked. Stopping an unarmed timer is a no-op.
func (t *ringTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.armed = false
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Armed reports whether the timer is currently counting down.
func (t *ringTimer) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.armed
}
