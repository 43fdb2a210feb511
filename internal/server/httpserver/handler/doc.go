// Package handler provides HTTP request handlers for the StackKV admin
// endpoint.
//
//   - health.go: liveness and readiness checks
//   - stats.go: store, connection and host statistics
//
// JSON responses share the Response envelope in types.go. /metrics is
// served by the Prometheus handler and does not pass through here.
package handler
