// Package storage provides the storage contract for StackKV.
//
// The store keeps all data in memory; there is no write-ahead log and
// no snapshot persistence. The contract is the TxStore interface:
//
//   - Global state: the committed key/value mapping
//   - Transaction stacks: per-session nested snapshots
//
// The reference implementation lives in the memory sub-package.
package storage
