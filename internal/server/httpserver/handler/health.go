package handler

import (
	"net/http"
	"time"
)

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady handles GET /ready. It reports 503 until the protocol
// server is accepting connections.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.server == nil || !h.server.Running() {
		h.writeError(w, r, http.StatusServiceUnavailable, "KV-SYS-5030", "kv server not accepting connections")
		return
	}
	h.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status: "ready",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
