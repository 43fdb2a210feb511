package config

import "time"

// CLIConfig is the configuration for stackkv-cli.
type CLIConfig struct {
	// Server is the line protocol address.
	Server string `yaml:"server"`
	// Network is "tcp" or "unix".
	Network string `yaml:"network"`
	// Admin is the admin HTTP address used by stats and health.
	Admin string `yaml:"admin"`
	// Output is text, json or yaml.
	Output string `yaml:"output"`
	// Timeout bounds one request.
	Timeout time.Duration `yaml:"timeout"`
	// HistoryFile stores REPL history; empty disables persistence.
	HistoryFile string `yaml:"history_file"`

	// Profiles are named connection presets.
	Profiles map[string]Profile `yaml:"profiles,omitempty"`
	// CurrentProfile is applied when no --profile flag is given.
	CurrentProfile string `yaml:"current_profile,omitempty"`
}

// Profile stores saved connection details.
type Profile struct {
	Server  string `yaml:"server" json:"server"`
	Network string `yaml:"network,omitempty" json:"network,omitempty"`
	Admin   string `yaml:"admin,omitempty" json:"admin,omitempty"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:      "127.0.0.1:8893",
		Network:     "tcp",
		Admin:       "127.0.0.1:8894",
		Output:      "text",
		Timeout:     10 * time.Second,
		HistoryFile: DefaultHistoryPath(),
		Profiles:    make(map[string]Profile),
	}
}
