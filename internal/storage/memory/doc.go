// Package memory provides the in-memory transactional store for StackKV.
//
// Features:
//
//   - Nested Transactions: every session owns a stack of snapshots
//   - Snapshot Isolation: a session inside a transaction sees only its
//     own innermost snapshot; other sessions never see pending writes
//   - Structural Sharing: snapshots are copy-on-write B-trees, so BEGIN
//     costs O(1) and writes copy only the touched nodes
//
// Thread Safety:
//
// One exclusive lock covers every operation, reads included. All store
// operations across all sessions are therefore totally ordered. This is
// the main scalability limit of the engine; callers reach it only
// through the storage.TxStore interface.
package memory
