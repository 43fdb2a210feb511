// Package memory provides the in-memory transactional store for StackKV.
package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/tidwall/btree"

	"github.com/yndnr/stackkv-go/internal/core/domain"
	"github.com/yndnr/stackkv-go/internal/storage"
)

// snapshot is one visible key/value scope. Copies share nodes until
// either side writes.
type snapshot = btree.Map[string, string]

// txStack is the ordered nesting of a session's open transactions.
// levels[0] is the outermost transaction; the last element is the top.
type txStack struct {
	levels []*snapshot
}

func (t *txStack) top() *snapshot {
	return t.levels[len(t.levels)-1]
}

func (t *txStack) push(s *snapshot) {
	t.levels = append(t.levels, s)
}

func (t *txStack) pop() *snapshot {
	n := len(t.levels) - 1
	s := t.levels[n]
	t.levels[n] = nil
	t.levels = t.levels[:n]
	return s
}

// Store is the transactional key-value engine.
//
// The zero value is not usable; create instances with New.
type Store struct {
	mu     sync.Mutex
	global *snapshot
	stacks map[domain.SessionID]*txStack

	maxKeys      int
	maxValueSize int
}

var _ storage.TxStore = (*Store)(nil)

// Option configures the Store.
type Option func(*Store)

// WithMaxKeys caps the number of keys a single scope may hold.
// A PUT that would add a key beyond the cap fails with
// domain.ErrInternalStore. Zero disables the cap.
func WithMaxKeys(n int) Option {
	return func(s *Store) {
		s.maxKeys = n
	}
}

// WithMaxValueSize caps the byte length of a stored value.
// Zero disables the cap.
func WithMaxValueSize(n int) Option {
	return func(s *Store) {
		s.maxValueSize = n
	}
}

// New creates a new empty store.
func New(opts ...Option) *Store {
	s := &Store{
		global: btree.NewMap[string, string](0),
		stacks: make(map[domain.SessionID]*txStack),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// scope returns the snapshot visible to the session.
// Caller must hold s.mu.
func (s *Store) scope(sid domain.SessionID) *snapshot {
	if st, ok := s.stacks[sid]; ok {
		return st.top()
	}
	return s.global
}

// Begin opens a transaction. The new level starts as a copy of the
// session's current top, or of the global state when none is open.
func (s *Store) Begin(_ context.Context, sid domain.SessionID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stacks[sid]
	if !ok {
		st = &txStack{}
		s.stacks[sid] = st
		st.push(s.global.Copy())
		return 1, nil
	}

	st.push(st.top().Copy())
	return len(st.levels), nil
}

// Commit pops the innermost level. If a parent remains it is replaced by
// the popped contents; otherwise the popped contents become the global
// state and the session's stack record is dropped.
func (s *Store) Commit(_ context.Context, sid domain.SessionID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stacks[sid]
	if !ok {
		return 0, domain.ErrNoActiveTransaction
	}

	committed := st.pop()
	if len(st.levels) > 0 {
		st.levels[len(st.levels)-1] = committed
		return len(st.levels), nil
	}

	s.global = committed
	delete(s.stacks, sid)
	return 0, nil
}

// Rollback pops and discards the innermost level.
func (s *Store) Rollback(_ context.Context, sid domain.SessionID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stacks[sid]
	if !ok {
		return 0, domain.ErrNoActiveTransaction
	}

	st.pop()
	if len(st.levels) == 0 {
		delete(s.stacks, sid)
		return 0, nil
	}
	return len(st.levels), nil
}

// Get reads a key from the session's visible scope.
func (s *Store) Get(_ context.Context, sid domain.SessionID, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.scope(sid).Get(key)
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return v, nil
}

// Put writes a key into the session's visible scope.
func (s *Store) Put(_ context.Context, sid domain.SessionID, key, value string) error {
	if key == "" {
		return domain.ErrInternalStore.WithDetails("empty key")
	}
	if s.maxValueSize > 0 && len(value) > s.maxValueSize {
		return domain.ErrInternalStore.WithDetails("value size " + strconv.Itoa(len(value)) +
			" exceeds limit " + strconv.Itoa(s.maxValueSize))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sc := s.scope(sid)
	if s.maxKeys > 0 && sc.Len() >= s.maxKeys {
		if _, exists := sc.Get(key); !exists {
			return domain.ErrInternalStore.WithDetails("key limit " + strconv.Itoa(s.maxKeys) + " reached")
		}
	}

	sc.Set(key, value)
	return nil
}

// Delete removes a key from the session's visible scope.
func (s *Store) Delete(_ context.Context, sid domain.SessionID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.scope(sid).Delete(key); !ok {
		return domain.ErrKeyNotFound
	}
	return nil
}

// Depth returns the number of open transactions for the session.
func (s *Store) Depth(_ context.Context, sid domain.SessionID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.stacks[sid]; ok {
		return len(st.levels)
	}
	return 0
}

// Discard drops the session's whole stack without propagating it.
func (s *Store) Discard(_ context.Context, sid domain.SessionID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stacks[sid]
	if !ok {
		return 0
	}
	delete(s.stacks, sid)
	return len(st.levels)
}

// Stats returns store counters.
func (s *Store) Stats(_ context.Context) storage.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := storage.Stats{
		GlobalKeys:     s.global.Len(),
		ActiveSessions: len(s.stacks),
	}
	for _, st := range s.stacks {
		n := len(st.levels)
		stats.OpenTransactions += n
		if n > stats.MaxDepth {
			stats.MaxDepth = n
		}
	}
	return stats
}

// Dump returns a copy of the session's visible scope as a plain map.
// Intended for diagnostics and tests; it is O(visible keys).
func (s *Store) Dump(_ context.Context, sid domain.SessionID) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc := s.scope(sid)
	out := make(map[string]string, sc.Len())
	sc.Scan(func(k, v string) bool {
		out[k] = v
		return true
	})
	return out
}
