// Package ident generates the ULID identifiers used for alarms and journal
// records. ULIDs are time-sortable, so journal keys iterate in submission
// order with no extra index.
package ident

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// monoEntropy is a package-level monotone entropy source shared across all
// NewID calls. A single shared source keeps ULIDs lexicographically ordered
// even when generated within the same millisecond.
var (
	monoMu      sync.Mutex
	monoEntropy io.Reader = ulid.Monotonic(rand.Reader, 0)
)

// NewID generates a fresh time-ordered ULID string.
func NewID() (string, error) {
	monoMu.Lock()
	defer monoMu.Unlock()
	ms := ulid.Timestamp(time.Now())
	id, err := ulid.New(ms, monoEntropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// MustNewID is like NewID but panics on error. An exhausted entropy source is
// an unrecoverable environment failure, not something callers can retry.
func MustNewID() string {
	id, err := NewID()
	if err != nil {
		panic(fmt.Sprintf("ident.MustNewID: %v", err))
	}
	return id
}

// Validate returns an error if s is not a well-formed ULID string.
func Validate(s string) error {
	_, err := ulid.ParseStrict(s)
	return err
}
