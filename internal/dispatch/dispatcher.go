// Package dispatch runs the single long-lived loop that moves alarms from
// the shared queue to per-alarm workers.
//
// The dispatcher polls at a fixed tick rather than waiting on a condition
// variable: wake latency of at most one tick is traded for a loop with no
// signalling between producer and dispatcher beyond the queue's own lock and
// the completion channel. Event ordering observable from outside (dispatch
// in non-decreasing expiration order, tick-bounded termination) does not
// depend on that choice.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/tickd/alarmd/internal/alarm"
	"github.com/tickd/alarmd/internal/clock"
	"github.com/tickd/alarmd/internal/metrics"
	"github.com/tickd/alarmd/internal/report"
	"github.com/tickd/alarmd/internal/worker"
)

// Dispatcher removes the earliest-expiring alarm from the queue and hands it
// to a fresh worker. Exactly one Dispatcher runs per process.
type Dispatcher struct {
	queue *alarm.Queue
	clk   clock.Clock
	rep   report.Reporter
	reg   *metrics.Registry
	tick  time.Duration
	done  <-chan struct{}
}

// New creates a Dispatcher draining q.
// done is the producer's completion signal: once it is closed and the queue
// is empty, Run reaches its terminal state.
func New(q *alarm.Queue, clk clock.Clock, rep report.Reporter, reg *metrics.Registry, tick time.Duration, done <-chan struct{}) *Dispatcher {
	return &Dispatcher{
		queue: q,
		clk:   clk,
		rep:   rep,
		reg:   reg,
		tick:  tick,
		done:  done,
	}
}

// Run executes the dispatch loop until the producer has signaled completion
// and the queue is empty. Cancelling ctx stops the loop early; that path is
// process shutdown only, never part of normal termination.
//
// Per iteration:
//   - queue non-empty: remove the earliest alarm, report its retrieval,
//     spawn a worker that takes ownership, and loop again with no pause.
//   - queue empty, completion signaled: terminal — Run returns.
//   - queue empty, producer still active: sleep one tick and retry.
//
// The dispatcher never inspects an alarm after handoff.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		a := d.queue.RemoveEarliest()
		if a != nil {
			now := d.clk.Now()
			d.rep.AlarmRetrieved(a, now)
			d.reg.Dispatched.Add(1)
			worker.Spawn(d.clk, d.rep, d.reg, a, d.tick)
			continue
		}

		select {
		case <-d.done:
			// An insert may have raced the completion signal; drain it
			// before going terminal.
			if d.queue.IsEmpty() {
				slog.Debug("dispatcher terminal", "dispatched", d.reg.Dispatched.Load())
				return
			}
			continue
		default:
		}

		select {
		case <-ctx.Done():
			return
		default:
		}

		d.clk.Sleep(d.tick)
	}
}
