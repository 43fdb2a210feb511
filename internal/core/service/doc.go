// Package service provides domain services for StackKV.
//
// Domain services contain the business logic between the wire protocol
// and storage. They depend on storage through interfaces, allowing for
// dependency injection and testability.
//
// This package contains:
//
//   - TxService: transactional key-value operations per client session,
//     with panic containment, logging, metrics and disconnect cleanup
//
// Services are safe for concurrent use by many connection handlers.
package service
