// Package worker tracks a single dispatched alarm to expiration.
//
// A worker is the exclusive owner of its alarm: after Spawn the alarm is
// referenced by no queue and no other goroutine, so the loop runs without
// any locking. Workers are fire-and-forget — nothing joins them, and ones
// still active when the process exits are abandoned. That is an accepted
// tradeoff: an abandoned worker holds one alarm and one goroutine, nothing
// else.
package worker

import (
	"time"

	"github.com/tickd/alarmd/internal/alarm"
	"github.com/tickd/alarmd/internal/clock"
	"github.com/tickd/alarmd/internal/metrics"
	"github.com/tickd/alarmd/internal/report"
)

// Spawn starts a detached goroutine that owns a until it expires.
// The caller must not touch a afterwards.
//
// Each tick the worker reads the clock; once now >= ExpiresAt it reports the
// expiration and terminates. The Expired transition happens exactly once and
// no status is emitted after it. While active, one status line is reported
// per tick.
func Spawn(clk clock.Clock, rep report.Reporter, reg *metrics.Registry, a *alarm.Alarm, tick time.Duration) {
	reg.ActiveWorkers.Add(1)
	go run(clk, rep, reg, a, tick)
}

func run(clk clock.Clock, rep report.Reporter, reg *metrics.Registry, a *alarm.Alarm, tick time.Duration) {
	for {
		now := clk.Now()
		if !now.Before(a.ExpiresAt) {
			rep.AlarmExpired(a, now)
			reg.Expired.Add(1)
			reg.ActiveWorkers.Add(-1)
			return
		}
		rep.AlarmTick(a, now)
		reg.Ticks.Add(1)
		clk.Sleep(tick)
	}
}
