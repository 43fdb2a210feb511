package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/yndnr/stackkv-go/internal/storage"
	"github.com/yndnr/stackkv-go/internal/telemetry/logger"
)

// StatsSource supplies store counters.
type StatsSource interface {
	Stats(ctx context.Context) storage.Stats
}

// ConnSource reports live protocol server state.
type ConnSource interface {
	Running() bool
	ActiveConnections() int
}

// Config holds the handler dependencies.
type Config struct {
	Store  StatsSource
	Server ConnSource
	Logger *slog.Logger

	// SystemStats enables host memory figures in /stats.
	SystemStats bool
}

// Handler serves the admin JSON endpoints.
type Handler struct {
	store       StatsSource
	server      ConnSource
	logger      *slog.Logger
	systemStats bool
	started     time.Time
	mux         *http.ServeMux
}

// New creates a new Handler.
func New(cfg Config) *Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	h := &Handler{
		store:       cfg.Store,
		server:      cfg.Server,
		logger:      log,
		systemStats: cfg.SystemStats,
		started:     time.Now(),
		mux:         http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)
	h.mux.HandleFunc("GET /stats", h.handleStats)
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(r)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(NewResponse(requestID, data)); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(NewErrorResponse(getRequestID(r), code, message)); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// getRequestID returns the ID the RequestID middleware attached to the
// request context, falling back to the inbound header.
func getRequestID(r *http.Request) string {
	if id := logger.RequestIDFromContext(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-ID")
}
