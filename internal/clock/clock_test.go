package clock_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/tickd/alarmd/internal/clock"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// waitFor polls cond until it holds or the real-time deadline elapses.
func waitFor(t *testing.T, cond func() bool, timeout time.Duration) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

// TestVirtual_NowOnlyMovesOnAdvance verifies the virtual clock is frozen
// between Advance calls.
func TestVirtual_NowOnlyMovesOnAdvance(t *testing.T) {
	v := clock.NewVirtual(t0)
	if !v.Now().Equal(t0) {
		t.Fatalf("Now: want %v, got %v", t0, v.Now())
	}
	v.Advance(3 * time.Second)
	if want := t0.Add(3 * time.Second); !v.Now().Equal(want) {
		t.Fatalf("Now after Advance: want %v, got %v", want, v.Now())
	}
}

// TestVirtual_SleepBlocksUntilDeadline verifies a sleeper is only woken once
// the clock has advanced past its deadline.
func TestVirtual_SleepBlocksUntilDeadline(t *testing.T) {
	v := clock.NewVirtual(t0)

	var woke atomic.Bool
	go func() {
		v.Sleep(2 * time.Second)
		woke.Store(true)
	}()

	if !waitFor(t, func() bool { return v.Sleepers() == 1 }, time.Second) {
		t.Fatal("sleeper never parked")
	}

	v.Advance(time.Second)
	time.Sleep(10 * time.Millisecond)
	if woke.Load() {
		t.Fatal("sleeper woke before its deadline")
	}

	v.Advance(time.Second)
	if !waitFor(t, woke.Load, time.Second) {
		t.Fatal("sleeper never woke after deadline")
	}
}

// TestVirtual_SleepZeroReturnsImmediately verifies non-positive durations do
// not park the caller.
func TestVirtual_SleepZeroReturnsImmediately(t *testing.T) {
	v := clock.NewVirtual(t0)
	done := make(chan struct{})
	go func() {
		v.Sleep(0)
		v.Sleep(-time.Second)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Sleep(0) blocked")
	}
}

// TestVirtual_AdvanceWakesOnlyDueSleepers verifies one Advance wakes exactly
// the sleepers whose deadlines have passed.
func TestVirtual_AdvanceWakesOnlyDueSleepers(t *testing.T) {
	v := clock.NewVirtual(t0)

	var early, late atomic.Bool
	go func() { v.Sleep(time.Second); early.Store(true) }()
	go func() { v.Sleep(5 * time.Second); late.Store(true) }()

	if !waitFor(t, func() bool { return v.Sleepers() == 2 }, time.Second) {
		t.Fatal("sleepers never parked")
	}

	v.Advance(2 * time.Second)
	if !waitFor(t, early.Load, time.Second) {
		t.Fatal("early sleeper never woke")
	}
	if late.Load() {
		t.Fatal("late sleeper woke early")
	}
	if v.Sleepers() != 1 {
		t.Fatalf("Sleepers: want 1, got %d", v.Sleepers())
	}

	v.Advance(3 * time.Second)
	if !waitFor(t, late.Load, time.Second) {
		t.Fatal("late sleeper never woke")
	}
}

// TestReal_NowTracksWallClock sanity-checks the real clock.
func TestReal_NowTracksWallClock(t *testing.T) {
	c := clock.Real()
	before := time.Now()
	got := c.Now()
	after := time.Now()
	if got.Before(before) || got.After(after) {
		t.Fatalf("Real().Now() = %v outside [%v, %v]", got, before, after)
	}
}
