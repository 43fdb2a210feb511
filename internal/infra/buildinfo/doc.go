// Package buildinfo provides build information for StackKV.
//
// Version, Commit and BuildTime are injected via ldflags; GoVersion is
// read from the runtime. The server reports them in /stats and the
// -version flag, and the CLI in its version subcommand.
package buildinfo
