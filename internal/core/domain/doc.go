// Package domain defines the core domain types for StackKV.
//
// Domain types are plain values without any IO dependencies or
// framework coupling. This package contains:
//
//   - SessionID: Explicit client session identity, one per connection
//   - Errors: Domain-specific error definitions with stable codes
//
// Every layer above the store reports failures with the DomainError
// values declared here, so the command layer can map them to wire
// responses with errors.Is.
package domain
