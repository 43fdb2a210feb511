package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by Merge.
const (
	EnvServer  = "STACKKV_SERVER"
	EnvNetwork = "STACKKV_NETWORK"
	EnvAdmin   = "STACKKV_ADMIN"
	EnvOutput  = "STACKKV_OUTPUT"
	EnvTimeout = "STACKKV_TIMEOUT"
	EnvProfile = "STACKKV_PROFILE"
)

func configDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".stackkv"
	}
	return filepath.Join(homeDir, ".stackkv")
}

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "cli.yaml")
}

// DefaultHistoryPath returns the default REPL history file path.
func DefaultHistoryPath() string {
	return filepath.Join(configDir(), "history")
}

// Load loads CLI configuration from file. A missing file yields the
// defaults.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]Profile)
	}
	return cfg, nil
}

// Save writes the configuration with owner-only permissions.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// Merge applies, in order, the selected profile, environment variables
// and flags on top of cfg. Empty values are ignored. Recognized flag
// keys are "profile", "server", "network", "admin", "output" and
// "timeout".
func Merge(cfg *CLIConfig, env map[string]string, flags map[string]string) (*CLIConfig, error) {
	out := *cfg

	profile := out.CurrentProfile
	if v := env[EnvProfile]; v != "" {
		profile = v
	}
	if v := flags["profile"]; v != "" {
		profile = v
	}
	if profile != "" {
		p, ok := out.Profiles[profile]
		if !ok {
			return nil, fmt.Errorf("unknown profile %q", profile)
		}
		setIf(&out.Server, p.Server)
		setIf(&out.Network, p.Network)
		setIf(&out.Admin, p.Admin)
	}

	for _, src := range []map[string]string{
		{"server": env[EnvServer], "network": env[EnvNetwork], "admin": env[EnvAdmin], "output": env[EnvOutput], "timeout": env[EnvTimeout]},
		flags,
	} {
		setIf(&out.Server, src["server"])
		setIf(&out.Network, src["network"])
		setIf(&out.Admin, src["admin"])
		setIf(&out.Output, src["output"])
		if v := src["timeout"]; v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("invalid timeout %q: %w", v, err)
			}
			out.Timeout = d
		}
	}

	return &out, nil
}

// EnvMap collects the STACKKV_* variables Merge understands.
func EnvMap() map[string]string {
	env := make(map[string]string)
	for _, k := range []string{EnvServer, EnvNetwork, EnvAdmin, EnvOutput, EnvTimeout, EnvProfile} {
		if v, ok := os.LookupEnv(k); ok {
			env[k] = v
		}
	}
	return env
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
