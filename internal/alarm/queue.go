package alarm

import "sync"

// Queue is the shared container of pending alarms, kept sorted by ascending
// ExpiresAt. It owns both the list and its lock; callers interact only
// through Insert, RemoveEarliest, IsEmpty, and Len, each of which is atomic
// with respect to the others.
//
// Tie-break: an alarm inserted later is placed immediately before the first
// resident alarm with an equal-or-later expiration, so among equal
// expirations the most recently submitted is dispatched first. Kept for
// compatibility with existing consumers of the output ordering.
//
// The scan is O(n) in pending alarms; pending counts are expected small and
// the lock is never held across a pause or I/O.
type Queue struct {
	mu   sync.Mutex
	head *Alarm
	n    int
}

// NewQueue returns an empty Queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Insert places a into the queue in sorted position.
// The queue takes ownership of a; the caller must not touch it afterwards.
func (q *Queue) Insert(a *Alarm) {
	q.mu.Lock()
	defer q.mu.Unlock()

	link := &q.head
	for *link != nil && (*link).ExpiresAt.Before(a.ExpiresAt) {
		link = &(*link).next
	}
	a.next = *link
	*link = a
	q.n++
}

// RemoveEarliest removes and returns the earliest-expiring alarm, or nil if
// the queue is empty. Ownership of the returned alarm transfers to the
// caller; its queue link is cleared before handoff.
func (q *Queue) RemoveEarliest() *Alarm {
	q.mu.Lock()
	defer q.mu.Unlock()

	a := q.head
	if a == nil {
		return nil
	}
	q.head = a.next
	a.next = nil
	q.n--
	return a
}

// IsEmpty reports whether no alarms are pending.
func (q *Queue) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.head == nil
}

// Len returns the number of pending alarms.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.n
}

// snapshot returns the queued messages in order. Test helper; not part of
// the queue contract.
func (q *Queue) snapshot() []*Alarm {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []*Alarm
	for a := q.head; a != nil; a = a.next {
		out = append(out, a)
	}
	return out
}
