// Package clock abstracts time so the dispatcher and workers can be driven by
// a virtual clock in tests. The real clock is a thin wrapper over the time
// package; the virtual clock advances only when told to and wakes sleepers
// whose deadlines have passed.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current time and tick-length pauses.
//
// Sleep blocks the calling goroutine for at least d of this clock's time.
// Implementations must be safe for concurrent use.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// ─── real clock ──────────────────────────────────────────────────────────────

type realClock struct{}

// Real returns the wall clock.
func Real() Clock { return realClock{} }

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// ─── virtual clock ───────────────────────────────────────────────────────────

// Virtual is a manually advanced clock for deterministic tests.
//
// Sleep parks the caller until Advance moves the clock past the caller's
// deadline. Time never moves on its own.
type Virtual struct {
	mu      sync.Mutex
	now     time.Time
	waiters []*waiter
}

type waiter struct {
	deadline time.Time
	ch       chan struct{}
}

// NewVirtual creates a Virtual clock starting at the given instant.
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{now: start}
}

func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

func (v *Virtual) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}

	v.mu.Lock()
	w := &waiter{deadline: v.now.Add(d), ch: make(chan struct{})}
	v.waiters = append(v.waiters, w)
	v.mu.Unlock()

	<-w.ch
}

// Advance moves the clock forward by d and wakes every sleeper whose deadline
// has been reached. Sleepers woken by Advance observe the new time on their
// next Now call.
func (v *Virtual) Advance(d time.Duration) {
	v.mu.Lock()
	v.now = v.now.Add(d)

	remaining := v.waiters[:0]
	for _, w := range v.waiters {
		if !w.deadline.After(v.now) {
			close(w.ch)
		} else {
			remaining = append(remaining, w)
		}
	}
	v.waiters = remaining
	v.mu.Unlock()
}

// Sleepers returns the number of goroutines currently parked in Sleep.
// Tests use it to wait until the loop under test has gone idle before
// advancing the clock.
func (v *Virtual) Sleepers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.waiters)
}
