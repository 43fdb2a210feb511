// Package config provides server configuration for StackKV.
//
// This package defines the server configuration structure and validation:
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation (addresses, limits, enum values)
//   - sanitize.go: Normalization of user input before validation
//   - convert.go: Mapping to component configurations
//
// Configuration is loaded via internal/infra/confloader and supports
// a YAML file and STACKKV_ environment variables.
package config
