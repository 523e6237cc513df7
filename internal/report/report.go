// Package report defines where alarm lifecycle events go. Four distinct
// events exist and must stay distinguishable: accepted (producer), retrieved
// (dispatcher), tick (worker, periodic), and expired (worker, terminal).
package report

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tickd/alarmd/internal/alarm"
)

// Reporter receives alarm lifecycle events.
//
// Implementations must be safe for concurrent use: workers report
// concurrently with each other, the dispatcher, and the producer. No ordering
// is guaranteed between events from different workers.
type Reporter interface {
	// AlarmAccepted fires when the producer has built and queued an alarm.
	AlarmAccepted(a *alarm.Alarm, now time.Time)

	// AlarmRetrieved fires when the dispatcher removes an alarm from the
	// queue, just before worker handoff.
	AlarmRetrieved(a *alarm.Alarm, now time.Time)

	// AlarmTick fires once per polling tick while an alarm is active.
	AlarmTick(a *alarm.Alarm, now time.Time)

	// AlarmExpired fires exactly once, when the worker observes
	// now >= ExpiresAt. No further events follow for that alarm.
	AlarmExpired(a *alarm.Alarm, now time.Time)
}

// ─── stream reporter ─────────────────────────────────────────────────────────

// Stream writes one line per event to an io.Writer, in the classic alarm
// clock format with Unix-second timestamps. A mutex serializes writes so
// concurrent workers never interleave partial lines.
type Stream struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStream returns a Stream reporting to w.
func NewStream(w io.Writer) *Stream {
	return &Stream{w: w}
}

func (s *Stream) AlarmAccepted(a *alarm.Alarm, now time.Time) {
	s.printf("Alarm accepted at %d: %d %s\n", now.Unix(), a.ExpiresAt.Unix(), a.Message)
}

func (s *Stream) AlarmRetrieved(a *alarm.Alarm, now time.Time) {
	s.printf("Alarm retrieved at %d: %d %s\n", now.Unix(), a.ExpiresAt.Unix(), a.Message)
}

func (s *Stream) AlarmTick(a *alarm.Alarm, now time.Time) {
	s.printf("Alarm: %d %s\n", a.ExpiresAt.Unix(), a.Message)
}

func (s *Stream) AlarmExpired(a *alarm.Alarm, now time.Time) {
	s.printf("Alarm expired at %d: %d %s\n", now.Unix(), a.ExpiresAt.Unix(), a.Message)
}

func (s *Stream) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, format, args...)
}

// ─── fan-out ─────────────────────────────────────────────────────────────────

// Multi forwards every event to each of its reporters in order.
type Multi []Reporter

func (m Multi) AlarmAccepted(a *alarm.Alarm, now time.Time) {
	for _, r := range m {
		r.AlarmAccepted(a, now)
	}
}

func (m Multi) AlarmRetrieved(a *alarm.Alarm, now time.Time) {
	for _, r := range m {
		r.AlarmRetrieved(a, now)
	}
}

func (m Multi) AlarmTick(a *alarm.Alarm, now time.Time) {
	for _, r := range m {
		r.AlarmTick(a, now)
	}
}

func (m Multi) AlarmExpired(a *alarm.Alarm, now time.Time) {
	for _, r := range m {
		r.AlarmExpired(a, now)
	}
}

// Discard is a Reporter that drops every event. Useful in tests that only
// care about queue or lifecycle behaviour.
type Discard struct{}

func (Discard) AlarmAccepted(*alarm.Alarm, time.Time)  {}
func (Discard) AlarmRetrieved(*alarm.Alarm, time.Time) {}
func (Discard) AlarmTick(*alarm.Alarm, time.Time)      {}
func (Discard) AlarmExpired(*alarm.Alarm, time.Time)   {}
