// Package alarm contains the core domain type and the shared pending-alarm
// queue. The Alarm and its Queue live in one package so the intrusive list
// link stays unexported: nothing outside this package can observe or mutate
// queue structure.
package alarm

import "time"

// MaxMessageLen is the default cap on alarm message text, in bytes.
// Longer input is truncated by the producer at parse time.
const MaxMessageLen = 64

// Alarm is a single timed request.
//
// Ownership is exclusive and moves in one direction only: the producer owns
// an Alarm until Queue.Insert, the Queue owns it while resident, the
// dispatcher owns it transiently during RemoveEarliest, and the worker owns
// it from dispatch until expiration. No two goroutines ever hold the same
// Alarm concurrently, which is what lets workers run lock-free.
type Alarm struct {
	// ID is a ULID uniquely identifying this alarm.
	ID string

	// RequestedDelay is the client-requested countdown, always positive.
	RequestedDelay time.Duration

	// SubmittedAt is the clock reading when the producer accepted the alarm.
	SubmittedAt time.Time

	// ExpiresAt is SubmittedAt + RequestedDelay.
	ExpiresAt time.Time

	// Message is the text reported at every tick and at expiration.
	// Capped at MaxMessageLen by the producer.
	Message string

	// next links this alarm into the pending queue. Valid only while the
	// alarm is resident; cleared by RemoveEarliest before handoff.
	next *Alarm
}

// New builds an Alarm expiring delay after now.
func New(id string, delay time.Duration, message string, now time.Time) *Alarm {
	return &Alarm{
		ID:             id,
		RequestedDelay: delay,
		SubmittedAt:    now,
		ExpiresAt:      now.Add(delay),
		Message:        message,
	}
}
