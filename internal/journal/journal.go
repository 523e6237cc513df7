// Package journal persists alarm lifecycle events to a bbolt database for
// after-the-fact inspection. The journal is append-only at runtime and is
// never read back by alarmd itself: alarms do not survive a restart, only
// their audit trail does.
//
// bbolt is used because it is pure Go, ACID, and a single file — the journal
// stays consistent even if the process is killed mid-write.
package journal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.etcd.io/bbolt"

	"github.com/tickd/alarmd/internal/alarm"
	"github.com/tickd/alarmd/internal/ident"
)

var bucketEvents = []byte("events")

// Event names recorded in the journal.
const (
	EventAccepted  = "accepted"
	EventRetrieved = "retrieved"
	EventTick      = "tick"
	EventExpired   = "expired"
)

// Record is one journal entry. Records are keyed by a fresh ULID, so a
// cursor scan returns them in write order.
type Record struct {
	AlarmID   string `json:"alarm_id"`
	Event     string `json:"event"`
	At        int64  `json:"at"`         // unix seconds of the event
	ExpiresAt int64  `json:"expires_at"` // the alarm's configured expiration
	Message   string `json:"message"`
}

// Journal is a bbolt-backed event log. It satisfies report.Reporter, so it
// is wired as one branch of the report fan-out. Writes are best-effort: a
// failed append is logged and dropped, never retried, and never blocks the
// alarm pipeline on an error path.
type Journal struct {
	db *bbolt.DB
}

// Open opens (or creates) the journal database at path.
func Open(path string) (*Journal, error) {
	opts := &bbolt.Options{Timeout: 0} // non-blocking open
	db, err := bbolt.Open(path, 0o640, opts)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEvents)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: init bucket: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close flushes and closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// ─── report.Reporter ─────────────────────────────────────────────────────────

func (j *Journal) AlarmAccepted(a *alarm.Alarm, now time.Time) {
	j.append(EventAccepted, a, now)
}

func (j *Journal) AlarmRetrieved(a *alarm.Alarm, now time.Time) {
	j.append(EventRetrieved, a, now)
}

func (j *Journal) AlarmTick(a *alarm.Alarm, now time.Time) {
	j.append(EventTick, a, now)
}

func (j *Journal) AlarmExpired(a *alarm.Alarm, now time.Time) {
	j.append(EventExpired, a, now)
}

func (j *Journal) append(event string, a *alarm.Alarm, now time.Time) {
	rec := Record{
		AlarmID:   a.ID,
		Event:     event,
		At:        now.Unix(),
		ExpiresAt: a.ExpiresAt.Unix(),
		Message:   a.Message,
	}
	val, err := json.Marshal(rec)
	if err != nil {
		slog.Warn("journal: marshal record", "alarm_id", a.ID, "event", event, "err", err)
		return
	}

	key := []byte(ident.MustNewID())
	if err := j.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEvents).Put(key, val)
	}); err != nil {
		slog.Warn("journal: append record", "alarm_id", a.ID, "event", event, "err", err)
	}
}

// ForEach iterates over every journal record in write order, calling fn for
// each one. Iteration stops early if fn returns a non-nil error. Used by
// tests and offline inspection tooling, never by the alarm pipeline.
func (j *Journal) ForEach(fn func(key string, rec Record) error) error {
	return j.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEvents).ForEach(func(k, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("journal: record %s: %w", k, err)
			}
			return fn(string(k), rec)
		})
	})
}
