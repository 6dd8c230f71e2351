package capture

import (
	"sync"
	"time"
)

// pauseState is the capture pause state machine.
type pauseState int

const (
	active pauseState = iota
	pausedUntil
	pausedIndefinitely
)

// Pauser tracks whether capture is suspended. It is safe to drive from any
// goroutine; the loop checks it on every tick and a timed pause expires by
// itself.
type Pauser struct {
	mu    sync.Mutex
	state pauseState
	until time.Time
	now   func() time.Time
}

func newPauser(now func() time.Time) *Pauser {
	if now == nil {
		now = time.Now
	}
	return &Pauser{now: now}
}

// Pause suspends capture until Resume is called.
func (p *Pauser) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = pausedIndefinitely
}

// PauseFor suspends capture for the given duration. Non-positive durations
// pause indefinitely.
func (p *Pauser) PauseFor(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d <= 0 {
		p.state = pausedIndefinitely
		return
	}
	p.state = pausedUntil
	p.until = p.now().Add(d)
}

// Resume forces capture active from any state.
func (p *Pauser) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = active
}

// Paused reports whether capture is currently suspended, transitioning an
// expired timed pause back to active.
func (p *Pauser) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case pausedIndefinitely:
		return true
	case pausedUntil:
		if p.now().Before(p.until) {
			return true
		}
		p.state = active
	}
	return false
}
