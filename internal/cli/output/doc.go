// Package output provides output formatting for stackkv-cli.
//
//   - formatter.go: Formatter interface and factory
//   - text.go: human-readable output (default)
//   - json.go: JSON output
//   - yaml.go: YAML output
//
// Protocol responses and admin payloads go through the same formatters,
// so scripts can pick json or yaml for either.
package output
