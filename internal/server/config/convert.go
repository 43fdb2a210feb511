package config

import (
	"github.com/yndnr/stackkv-go/internal/server/kvserver"
	"github.com/yndnr/stackkv-go/internal/storage/memory"
	"github.com/yndnr/stackkv-go/internal/telemetry/logger"
)

// ToKVServerConfig maps the kv section to kvserver.Config.
func ToKVServerConfig(cfg *ServerConfig) *kvserver.Config {
	kv := cfg.Server.KV
	return &kvserver.Config{
		Network:        kv.Network,
		Addr:           kv.Addr,
		MaxFrameSize:   kv.MaxFrameSize,
		MaxConnections: kv.MaxConnections,
		ReadTimeout:    kv.ReadTimeout,
		WriteTimeout:   kv.WriteTimeout,
		IdleTimeout:    kv.IdleTimeout,
		RateLimit:      kv.RateLimit,
	}
}

// ToStoreOptions maps the store section to memory.Store options.
func ToStoreOptions(cfg *ServerConfig) []memory.Option {
	var opts []memory.Option
	if cfg.Store.MaxKeys > 0 {
		opts = append(opts, memory.WithMaxKeys(cfg.Store.MaxKeys))
	}
	if cfg.Store.MaxValueSize > 0 {
		opts = append(opts, memory.WithMaxValueSize(cfg.Store.MaxValueSize))
	}
	return opts
}

// ToLoggerConfig maps the log section to logger.Config.
func ToLoggerConfig(cfg *ServerConfig) logger.Config {
	lc := logger.DefaultConfig()
	lc.Level = cfg.Log.Level
	lc.Format = cfg.Log.Format
	lc.LogValues = cfg.Log.LogValues
	return lc
}
