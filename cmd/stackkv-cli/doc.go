// Package main provides the entry point for stackkv-cli.
//
// The CLI talks to a StackKV server over the line protocol and to its
// admin HTTP endpoint:
//
//   - Interactive REPL with history and completion (default)
//   - One-shot commands and scripts (exec)
//   - Server statistics and health checks (stats, health)
//   - CLI configuration and profiles (config)
//
// Usage:
//
//	stackkv-cli -s 127.0.0.1:8893
//	stackkv-cli exec PUT greeting hello
//	stackkv-cli -o json stats
package main
