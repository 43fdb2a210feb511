package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/stackkv-go/internal/server/httpserver/handler"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Handler serves /health, /ready and /stats.
	Handler *handler.Handler

	// Metrics serves /metrics. Nil leaves the route unregistered.
	Metrics http.Handler

	// Logger for request logging.
	Logger *slog.Logger

	// AllowList restricts /stats and /metrics to these IPs or CIDRs.
	AllowList []string

	// RateLimit is requests per second per client IP; 0 disables it.
	RateLimit int

	// AccessLog enables per-request logging.
	AccessLog bool
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	// Order: Recover -> RequestID -> AccessLog -> RateLimit -> Handler
	base := []Middleware{Recover(log), RequestID()}
	if cfg.AccessLog {
		base = append(base, AccessLog(log))
	}
	if cfg.RateLimit > 0 {
		base = append(base, RateLimit(cfg.RateLimit))
	}

	guarded := append(base[:len(base):len(base)], NetworkACL(&NetworkACLConfig{
		AllowList: cfg.AllowList,
		Logger:    log,
	}))

	mux := http.NewServeMux()

	// Probes stay open to orchestrators regardless of the allowlist.
	probes := Chain(cfg.Handler, base...)
	mux.Handle("GET /health", probes)
	mux.Handle("GET /ready", probes)

	mux.Handle("GET /stats", Chain(cfg.Handler, guarded...))
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", Chain(cfg.Metrics, guarded...))
	}

	return mux
}
