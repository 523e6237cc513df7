package alarm

import (
	"fmt"
	"testing"
	"time"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// mk builds an alarm expiring delay after t0.
func mk(id string, delay time.Duration, msg string) *Alarm {
	return New(id, delay, msg, t0)
}

// messages returns the queued messages head-to-tail.
func messages(q *Queue) []string {
	var out []string
	for _, a := range q.snapshot() {
		out = append(out, a.Message)
	}
	return out
}

// TestQueue_InsertKeepsSortedOrder verifies the queue is sorted by ascending
// expiration time regardless of insertion order.
func TestQueue_InsertKeepsSortedOrder(t *testing.T) {
	q := NewQueue()
	q.Insert(mk("c", 30*time.Second, "c"))
	q.Insert(mk("a", 10*time.Second, "a"))
	q.Insert(mk("b", 20*time.Second, "b"))

	got := messages(q)
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("queue order: want %v, got %v", want, got)
		}
	}
}

// TestQueue_TieBreakLastInFirstOut verifies that an alarm inserted later with
// an equal expiration time is placed immediately before the earlier one, so
// it is removed first.
func TestQueue_TieBreakLastInFirstOut(t *testing.T) {
	q := NewQueue()
	q.Insert(mk("1", 5*time.Second, "hello"))
	q.Insert(mk("2", 5*time.Second, "world"))

	got := messages(q)
	if got[0] != "world" || got[1] != "hello" {
		t.Fatalf("tie-break order: want [world hello], got %v", got)
	}

	if a := q.RemoveEarliest(); a.Message != "world" {
		t.Errorf("first removal: want world, got %s", a.Message)
	}
	if a := q.RemoveEarliest(); a.Message != "hello" {
		t.Errorf("second removal: want hello, got %s", a.Message)
	}
}

// TestQueue_TieBreakAmongThree verifies the tie-break holds when equal
// expirations are interleaved with other entries.
func TestQueue_TieBreakAmongThree(t *testing.T) {
	q := NewQueue()
	q.Insert(mk("1", 5*time.Second, "first"))
	q.Insert(mk("2", 3*time.Second, "early"))
	q.Insert(mk("3", 5*time.Second, "second"))
	q.Insert(mk("4", 5*time.Second, "third"))

	got := messages(q)
	want := []string{"early", "third", "second", "first"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("queue order: want %v, got %v", want, got)
		}
	}
}

// TestQueue_RemoveEarliestEmpty verifies removal from an empty queue returns
// nil rather than an error, and that the queue reports empty correctly.
func TestQueue_RemoveEarliestEmpty(t *testing.T) {
	q := NewQueue()
	if !q.IsEmpty() {
		t.Fatal("new queue should be empty")
	}
	if a := q.RemoveEarliest(); a != nil {
		t.Fatalf("RemoveEarliest on empty queue: want nil, got %+v", a)
	}
	if q.Len() != 0 {
		t.Errorf("Len: want 0, got %d", q.Len())
	}
}

// TestQueue_Conservation verifies every inserted alarm is returned exactly
// once, with no loss and no duplication.
func TestQueue_Conservation(t *testing.T) {
	q := NewQueue()

	const n = 100
	inserted := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("a%03d", i)
		// Mix of delays, with plenty of ties.
		q.Insert(mk(id, time.Duration(i%7+1)*time.Second, id))
		inserted[id] = true
	}

	if q.Len() != n {
		t.Fatalf("Len after inserts: want %d, got %d", n, q.Len())
	}

	removed := make(map[string]bool, n)
	var last time.Time
	for i := 0; i < n; i++ {
		a := q.RemoveEarliest()
		if a == nil {
			t.Fatalf("queue drained after %d removals, want %d", i, n)
		}
		if removed[a.ID] {
			t.Fatalf("alarm %s returned twice", a.ID)
		}
		removed[a.ID] = true
		if a.ExpiresAt.Before(last) {
			t.Fatalf("removal order regressed: %v before %v", a.ExpiresAt, last)
		}
		last = a.ExpiresAt
	}

	if a := q.RemoveEarliest(); a != nil {
		t.Fatalf("expected empty queue, got %+v", a)
	}
	for id := range inserted {
		if !removed[id] {
			t.Errorf("alarm %s was inserted but never removed", id)
		}
	}
}

// TestQueue_LinkClearedOnRemoval verifies the intrusive link does not leak
// queue structure to the new owner.
func TestQueue_LinkClearedOnRemoval(t *testing.T) {
	q := NewQueue()
	q.Insert(mk("1", time.Second, "a"))
	q.Insert(mk("2", 2*time.Second, "b"))

	a := q.RemoveEarliest()
	if a.next != nil {
		t.Error("removed alarm still linked into the queue")
	}
}
