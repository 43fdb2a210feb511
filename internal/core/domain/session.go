// Package domain defines the core domain types for StackKV.
package domain

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// SessionIDPrefix is the prefix of every generated session ID.
const SessionIDPrefix = "kvss-"

// SessionID identifies one client session. The connection layer creates
// one per accepted connection and passes it explicitly to every store call.
//
// Format: kvss-{ulid_lowercase}, 31 characters total.
type SessionID string

// String implements fmt.Stringer.
func (id SessionID) String() string {
	return string(id)
}

// IsValid reports whether the ID has the expected prefix and ULID body.
func (id SessionID) IsValid() bool {
	s := string(id)
	if !strings.HasPrefix(s, SessionIDPrefix) {
		return false
	}
	_, err := ulid.ParseStrict(strings.ToUpper(s[len(SessionIDPrefix):]))
	return err == nil
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewSessionID generates a new session ID using ULID.
// IDs generated within the same millisecond are strictly increasing.
func NewSessionID() (SessionID, error) {
	entropyMu.Lock()
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	entropyMu.Unlock()
	if err != nil {
		return "", ErrInternalStore.WithCause(err)
	}
	return SessionID(SessionIDPrefix + strings.ToLower(id.String())), nil
}
