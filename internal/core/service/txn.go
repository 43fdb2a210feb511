// Package service provides domain services for StackKV.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yndnr/stackkv-go/internal/core/domain"
	"github.com/yndnr/stackkv-go/internal/storage"
	"github.com/yndnr/stackkv-go/internal/telemetry/logger"
	"github.com/yndnr/stackkv-go/internal/telemetry/metric"
)

// TxService runs transactional key-value operations on behalf of client
// sessions.
type TxService struct {
	store                storage.TxStore
	metrics              *metric.Registry
	rollbackOnDisconnect bool
}

// TxOption configures a TxService.
type TxOption func(*TxService)

// WithMetrics records transaction metrics in the given registry.
func WithMetrics(m *metric.Registry) TxOption {
	return func(s *TxService) {
		s.metrics = m
	}
}

// WithRollbackOnDisconnect sets whether CloseSession discards the
// session's open transactions. Enabled by default.
func WithRollbackOnDisconnect(enabled bool) TxOption {
	return func(s *TxService) {
		s.rollbackOnDisconnect = enabled
	}
}

// NewTxService creates a new TxService.
func NewTxService(store storage.TxStore, opts ...TxOption) *TxService {
	s := &TxService{
		store:                store,
		rollbackOnDisconnect: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ============================================================================
// Session Lifecycle
// ============================================================================

// OpenSession allocates the identity for a new client session.
func (s *TxService) OpenSession(ctx context.Context) (domain.SessionID, error) {
	sid, err := domain.NewSessionID()
	if err != nil {
		return "", fmt.Errorf("open session: %w", err)
	}
	logger.L(ctx).Debug("session opened", "session", sid.String())
	return sid, nil
}

// CloseSession applies the disconnect policy to a session whose client
// went away. It returns the number of transaction levels discarded.
func (s *TxService) CloseSession(ctx context.Context, sid domain.SessionID) int {
	if !s.rollbackOnDisconnect {
		if depth := s.store.Depth(ctx, sid); depth > 0 {
			logger.L(ctx).Warn("session closed with open transactions",
				"depth", depth,
			)
		}
		return 0
	}

	n := s.store.Discard(ctx, sid)
	if n > 0 {
		s.metrics.TxClosed(n)
		s.metrics.AddDisconnectRollbacks(n)
		logger.L(ctx).Info("rolled back open transactions on disconnect",
			"levels", n,
		)
	}
	return n
}

// ============================================================================
// Transaction Control
// ============================================================================

// Begin opens a (possibly nested) transaction and returns the new depth.
func (s *TxService) Begin(ctx context.Context, sid domain.SessionID) (depth int, err error) {
	defer recoverInto(ctx, "BEGIN", &err)

	depth, err = s.store.Begin(ctx, sid)
	if err != nil {
		return 0, err
	}
	s.metrics.TxOpened()
	logger.L(ctx).Debug("transaction begun", "depth", depth)
	return depth, nil
}

// Commit commits the innermost transaction and returns the remaining depth.
func (s *TxService) Commit(ctx context.Context, sid domain.SessionID) (depth int, err error) {
	defer recoverInto(ctx, "COMMIT", &err)

	depth, err = s.store.Commit(ctx, sid)
	if err != nil {
		return 0, err
	}
	s.metrics.TxClosed(1)
	logger.L(ctx).Debug("transaction committed", "depth", depth)
	return depth, nil
}

// Rollback discards the innermost transaction and returns the remaining depth.
func (s *TxService) Rollback(ctx context.Context, sid domain.SessionID) (depth int, err error) {
	defer recoverInto(ctx, "ROLLBACK", &err)

	depth, err = s.store.Rollback(ctx, sid)
	if err != nil {
		return 0, err
	}
	s.metrics.TxClosed(1)
	logger.L(ctx).Debug("transaction rolled back", "depth", depth)
	return depth, nil
}

// Abort rolls back the innermost transaction after a failed write, if the
// session has one. It reports whether a level was rolled back.
func (s *TxService) Abort(ctx context.Context, sid domain.SessionID) bool {
	if s.store.Depth(ctx, sid) == 0 {
		return false
	}
	depth, err := s.Rollback(ctx, sid)
	if err != nil {
		logger.L(ctx).Error("compensating rollback failed", "error", err)
		return false
	}
	s.metrics.IncCompensatingRollback()
	logger.L(ctx).Info("compensating rollback", "depth", depth)
	return true
}

// Depth returns the number of open transactions for the session.
func (s *TxService) Depth(ctx context.Context, sid domain.SessionID) int {
	return s.store.Depth(ctx, sid)
}

// ============================================================================
// Key Operations
// ============================================================================

// Get reads a key in the session's visible scope.
func (s *TxService) Get(ctx context.Context, sid domain.SessionID, key string) (value string, err error) {
	defer recoverInto(ctx, "GET", &err)

	value, err = s.store.Get(ctx, sid, key)
	if err != nil {
		return "", err
	}
	logger.L(ctx).Debug("get", "key", key, "result", value)
	return value, nil
}

// Put writes a key in the session's visible scope.
func (s *TxService) Put(ctx context.Context, sid domain.SessionID, key, value string) (err error) {
	defer recoverInto(ctx, "PUT", &err)

	if err = s.store.Put(ctx, sid, key, value); err != nil {
		logger.L(ctx).Warn("put failed", "key", key, "error", err)
		return err
	}
	logger.L(ctx).Debug("put", "key", key, "value", value)
	return nil
}

// Delete removes a key from the session's visible scope.
func (s *TxService) Delete(ctx context.Context, sid domain.SessionID, key string) (err error) {
	defer recoverInto(ctx, "DELETE", &err)

	if err = s.store.Delete(ctx, sid, key); err != nil {
		return err
	}
	logger.L(ctx).Debug("delete", "key", key)
	return nil
}

// Stats returns store statistics.
func (s *TxService) Stats(ctx context.Context) storage.Stats {
	return s.store.Stats(ctx)
}

// recoverInto converts a panic in a store call into ErrInternalStore.
func recoverInto(ctx context.Context, op string, err *error) {
	if r := recover(); r != nil {
		logger.L(ctx).Error("panic in store operation",
			slog.String("op", op),
			slog.Any("panic", r),
		)
		*err = domain.ErrInternalStore.WithDetails(fmt.Sprintf("%s: %v", op, r))
	}
}
