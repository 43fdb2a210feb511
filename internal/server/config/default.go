package config

import "time"

// Default configuration values.
const (
	DefaultKVNetwork      = "tcp"
	DefaultKVAddr         = "127.0.0.1:8893"
	DefaultMaxFrameSize   = 1024
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 30 * time.Second
	DefaultIdleTimeout    = 5 * time.Minute
	DefaultHTTPAddr       = "127.0.0.1:8894"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
	DefaultConfigFileName = "stackkv.yaml"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			KV: KVConfig{
				Network:      DefaultKVNetwork,
				Addr:         DefaultKVAddr,
				MaxFrameSize: DefaultMaxFrameSize,
				ReadTimeout:  DefaultReadTimeout,
				WriteTimeout: DefaultWriteTimeout,
				IdleTimeout:  DefaultIdleTimeout,
			},
			HTTP: HTTPConfig{
				Enabled:     true,
				Addr:        DefaultHTTPAddr,
				SystemStats: true,
			},
		},
		Store: StoreSection{
			RollbackOnDisconnect: true,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
