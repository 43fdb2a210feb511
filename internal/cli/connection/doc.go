// Package connection provides server connections for stackkv-cli.
//
//   - client.go: line protocol client (one session per Client)
//   - http.go: admin HTTP client for /health and /stats
package connection
