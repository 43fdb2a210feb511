package config

import "strings"

// Sanitize returns a copy of the config with free-form values normalized:
// surrounding whitespace trimmed and enum values lowercased.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	out := *cfg

	out.Server.KV.Network = strings.ToLower(strings.TrimSpace(out.Server.KV.Network))
	out.Server.KV.Addr = strings.TrimSpace(out.Server.KV.Addr)
	out.Server.HTTP.Addr = strings.TrimSpace(out.Server.HTTP.Addr)
	out.Log.Level = strings.ToLower(strings.TrimSpace(out.Log.Level))
	out.Log.Format = strings.ToLower(strings.TrimSpace(out.Log.Format))

	if len(cfg.Server.HTTP.AllowList) > 0 {
		out.Server.HTTP.AllowList = make([]string, 0, len(cfg.Server.HTTP.AllowList))
		for _, entry := range cfg.Server.HTTP.AllowList {
			if entry = strings.TrimSpace(entry); entry != "" {
				out.Server.HTTP.AllowList = append(out.Server.HTTP.AllowList, entry)
			}
		}
	}

	if out.Server.KV.Network == "" {
		out.Server.KV.Network = DefaultKVNetwork
	}

	return &out
}
