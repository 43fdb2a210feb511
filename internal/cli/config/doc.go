// Package config provides CLI configuration for StackKV.
//
//   - spec.go: CLIConfig struct (~/.stackkv/cli.yaml)
//   - loader.go: Loading, saving and merging with env and flags
//
// Precedence, lowest first: defaults, the YAML file, the selected
// profile, STACKKV_* environment variables, command-line flags.
package config
