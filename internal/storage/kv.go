// Package storage provides storage abstractions for StackKV.
//
// This file defines the TxStore interface implemented by the
// transactional engine. Callers depend only on this contract, so the
// locking strategy behind it (today a single exclusive lock) can be
// replaced by per-key locking or a versioned scheme without changes
// above the storage layer.
package storage

import (
	"context"

	"github.com/yndnr/stackkv-go/internal/core/domain"
)

// TxStore is a key-value store with nested, per-session transactions.
//
// Every operation names the acting session explicitly. A session with
// open transactions reads and writes only its innermost snapshot; a
// session without one reads and writes the committed global state.
//
// Implementation requirements:
//   - Thread-safe: all methods may be called concurrently
//   - Serializable: the observable effect of concurrent calls equals
//     some serial order of those calls
type TxStore interface {
	// Begin opens a new (possibly nested) transaction and returns the
	// nesting depth after the push.
	Begin(ctx context.Context, sid domain.SessionID) (int, error)

	// Commit closes the innermost transaction, propagating its writes one
	// level up (or into the global state for the outermost level).
	// Returns the depth after the pop or domain.ErrNoActiveTransaction.
	Commit(ctx context.Context, sid domain.SessionID) (int, error)

	// Rollback discards the innermost transaction.
	// Returns the depth after the pop or domain.ErrNoActiveTransaction.
	Rollback(ctx context.Context, sid domain.SessionID) (int, error)

	// Get reads a key from the visible scope.
	// Returns domain.ErrKeyNotFound on a miss.
	Get(ctx context.Context, sid domain.SessionID, key string) (string, error)

	// Put inserts or overwrites a key in the visible scope.
	// Returns domain.ErrInternalStore if the write cannot be applied.
	Put(ctx context.Context, sid domain.SessionID, key, value string) error

	// Delete removes a key from the visible scope.
	// Returns domain.ErrKeyNotFound if the key is absent.
	Delete(ctx context.Context, sid domain.SessionID, key string) error

	// Depth returns the number of open transactions for the session.
	Depth(ctx context.Context, sid domain.SessionID) int

	// Discard drops every open transaction of the session without
	// propagating any of them. Returns the number of levels dropped.
	Discard(ctx context.Context, sid domain.SessionID) int

	// Stats returns a consistent point-in-time view of store counters.
	Stats(ctx context.Context) Stats
}

// Stats contains store statistics.
type Stats struct {
	// GlobalKeys is the number of committed keys.
	GlobalKeys int `json:"global_keys"`

	// ActiveSessions is the number of sessions with open transactions.
	ActiveSessions int `json:"active_sessions"`

	// OpenTransactions is the total number of open nesting levels
	// across all sessions.
	OpenTransactions int `json:"open_transactions"`

	// MaxDepth is the deepest nesting level currently open.
	MaxDepth int `json:"max_depth"`
}
