// Package httpserver provides the admin HTTP server for StackKV.
//
// Endpoints:
//
//   - GET /health: liveness
//   - GET /ready: 200 once the kv listener accepts connections
//   - GET /stats: store counters, connections, host memory (JSON)
//   - GET /metrics: Prometheus exposition
//
// /stats and /metrics honour an optional IP/CIDR allowlist. Every route
// gets panic recovery, request IDs, optional access logging and an
// optional per-IP rate limit.
//
// The admin server carries no key-value operations; those are served
// only by the line protocol in package kvserver.
package httpserver
