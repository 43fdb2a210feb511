// Package command provides CLI command definitions for stackkv-cli.
//
// It uses urfave/cli/v2. With no subcommand the CLI opens an interactive
// session (REPL) against the line protocol server.
//
//   - root.go: App, global flags, configuration resolution
//   - repl.go: default interactive action
//   - exec.go: exec subcommand for one-shot and scripted commands
//   - admin.go: stats and health via the admin HTTP endpoint
//   - config.go: config show, path, init
package command
