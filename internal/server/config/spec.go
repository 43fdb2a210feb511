// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for stackkv-server.
type ServerConfig struct {
	Server ServerSection `koanf:"server"`
	Store  StoreSection  `koanf:"store"`
	Log    LogSection    `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	KV   KVConfig   `koanf:"kv"`
	HTTP HTTPConfig `koanf:"http"`
}

// KVConfig configures the line protocol server.
type KVConfig struct {
	// Network is "tcp" or "unix".
	Network string `koanf:"network"`
	// Addr is host:port for tcp, or a socket path for unix.
	Addr string `koanf:"addr"`
	// MaxFrameSize bounds one command line in bytes.
	MaxFrameSize int `koanf:"max_frame_size"`
	// MaxConnections bounds concurrent connections; 0 means unbounded.
	MaxConnections int `koanf:"max_connections"`

	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`

	// RateLimit is commands per second per connection; 0 disables it.
	RateLimit int `koanf:"rate_limit"`
}

// HTTPConfig configures the admin HTTP server.
type HTTPConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`

	// AllowList restricts /stats and /metrics to these IPs or CIDRs.
	AllowList []string `koanf:"allow_list"`
	// RateLimit is requests per second per client IP; 0 disables it.
	RateLimit int `koanf:"rate_limit"`
	// AccessLog logs every admin request.
	AccessLog bool `koanf:"access_log"`
	// SystemStats adds host memory figures to /stats.
	SystemStats bool `koanf:"system_stats"`
}

// StoreSection configures the transactional store.
type StoreSection struct {
	// RollbackOnDisconnect discards a session's open transactions when
	// its connection closes.
	RollbackOnDisconnect bool `koanf:"rollback_on_disconnect"`
	// MaxKeys caps keys per visible scope; 0 means unbounded.
	MaxKeys int `koanf:"max_keys"`
	// MaxValueSize caps the byte length of a value; 0 means unbounded.
	MaxValueSize int `koanf:"max_value_size"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	// LogValues writes stored values to debug logs instead of masking them.
	LogValues bool `koanf:"log_values"`
}
