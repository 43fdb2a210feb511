package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	var errs []error
	errs = append(errs, verifyKV(&cfg.Server.KV)...)
	errs = append(errs, verifyHTTP(&cfg.Server.HTTP, &cfg.Server.KV)...)
	errs = append(errs, verifyStore(&cfg.Store)...)
	errs = append(errs, verifyLog(&cfg.Log)...)
	return errors.Join(errs...)
}

func verifyKV(cfg *KVConfig) []error {
	var errs []error

	switch cfg.Network {
	case "tcp", "tcp4", "tcp6":
		if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
			errs = append(errs, fmt.Errorf("server.kv.addr %q: %w", cfg.Addr, err))
		}
	case "unix":
		if cfg.Addr == "" {
			errs = append(errs, errors.New("server.kv.addr must be a socket path for unix network"))
		}
	default:
		errs = append(errs, fmt.Errorf("server.kv.network %q: must be tcp or unix", cfg.Network))
	}

	if cfg.MaxFrameSize < 1 {
		errs = append(errs, errors.New("server.kv.max_frame_size must be at least 1"))
	}
	if cfg.MaxConnections < 0 {
		errs = append(errs, errors.New("server.kv.max_connections must not be negative"))
	}
	if cfg.RateLimit < 0 {
		errs = append(errs, errors.New("server.kv.rate_limit must not be negative"))
	}
	if cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 || cfg.IdleTimeout < 0 {
		errs = append(errs, errors.New("server.kv timeouts must not be negative"))
	}

	return errs
}

func verifyHTTP(cfg *HTTPConfig, kv *KVConfig) []error {
	if !cfg.Enabled {
		return nil
	}

	var errs []error
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		errs = append(errs, fmt.Errorf("server.http.addr %q: %w", cfg.Addr, err))
	} else if kv.Network != "unix" && cfg.Addr == kv.Addr {
		errs = append(errs, fmt.Errorf("server.http.addr conflicts with server.kv.addr (%s)", cfg.Addr))
	}
	if cfg.RateLimit < 0 {
		errs = append(errs, errors.New("server.http.rate_limit must not be negative"))
	}
	for _, entry := range cfg.AllowList {
		if strings.Contains(entry, "/") {
			if _, _, err := net.ParseCIDR(entry); err != nil {
				errs = append(errs, fmt.Errorf("server.http.allow_list entry %q: %w", entry, err))
			}
		} else if net.ParseIP(entry) == nil {
			errs = append(errs, fmt.Errorf("server.http.allow_list entry %q: not an IP address", entry))
		}
	}
	return errs
}

func verifyStore(cfg *StoreSection) []error {
	var errs []error
	if cfg.MaxKeys < 0 {
		errs = append(errs, errors.New("store.max_keys must not be negative"))
	}
	if cfg.MaxValueSize < 0 {
		errs = append(errs, errors.New("store.max_value_size must not be negative"))
	}
	return errs
}

func verifyLog(cfg *LogSection) []error {
	var errs []error
	switch cfg.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q: must be debug, info, warn or error", cfg.Level))
	}
	switch cfg.Format {
	case "json", "text", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q: must be json or text", cfg.Format))
	}
	return errs
}
