// Package metrics provides a lightweight counter registry for alarmd. It
// deliberately avoids the prometheus/client_golang package so the binary
// stays small with no additional dependencies, and it has no HTTP listener:
// alarmd exposes no network surface, so the registry renders itself to an
// io.Writer for the shutdown summary instead.
package metrics

import (
	"fmt"
	"io"
	"sync/atomic"
)

// Registry holds all alarmd application metrics.
// All fields are safe for concurrent use.
type Registry struct {
	// Producer-side counters.
	Accepted atomic.Int64 // well-formed alarms queued
	Rejected atomic.Int64 // malformed lines discarded

	// Dispatcher/worker counters.
	Dispatched atomic.Int64 // alarms handed to a worker
	Ticks      atomic.Int64 // periodic status lines emitted
	Expired    atomic.Int64 // alarms that reached their expiration

	// ActiveWorkers tracks live worker goroutines. Workers are never joined,
	// so this gauge is the only visibility into in-flight alarms at exit.
	ActiveWorkers atomic.Int64
}

// WriteTo renders every metric in the Prometheus plain-text exposition
// format. The format is kept so the dump stays machine-parsable even though
// it is written to a stream rather than served over HTTP.
func (r *Registry) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, m := range []struct {
		name string
		help string
		typ  string
		val  int64
	}{
		{"alarmd_alarms_accepted_total", "Total well-formed alarms accepted by the producer", "counter", r.Accepted.Load()},
		{"alarmd_alarms_rejected_total", "Total malformed input lines discarded", "counter", r.Rejected.Load()},
		{"alarmd_alarms_dispatched_total", "Total alarms handed off to a worker", "counter", r.Dispatched.Load()},
		{"alarmd_worker_ticks_total", "Total periodic status reports emitted by workers", "counter", r.Ticks.Load()},
		{"alarmd_alarms_expired_total", "Total alarms that reached expiration", "counter", r.Expired.Load()},
		{"alarmd_workers_active", "Worker goroutines currently tracking an alarm", "gauge", r.ActiveWorkers.Load()},
	} {
		n, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %d\n",
			m.name, m.help, m.name, m.typ, m.name, m.val)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
