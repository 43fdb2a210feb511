// Package main provides the entry point for stackkv-server.
//
// The server hosts one in-memory transactional key-value store and
// exposes it through:
//
//   - The line protocol listener (one session per connection)
//   - An optional admin HTTP listener: /health, /ready, /stats, /metrics
//
// Usage:
//
//	stackkv-server [flags]
//	stackkv-server -config /path/to/stackkv.yaml
//
// Configuration comes from defaults, then the YAML file, then STACKKV_
// environment variables. Edits to log.level in the config file are
// applied without a restart.
package main
