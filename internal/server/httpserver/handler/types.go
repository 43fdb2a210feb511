package handler

import (
	"time"

	"github.com/yndnr/stackkv-go/internal/infra/buildinfo"
	"github.com/yndnr/stackkv-go/internal/storage"
)

// Response is the standard API response envelope.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
	}
}

// HealthResponse is the body of GET /health and GET /ready.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	Build             buildinfo.Info `json:"build"`
	UptimeSeconds     int64          `json:"uptime_seconds"`
	ActiveConnections int            `json:"active_connections"`
	Store             storage.Stats  `json:"store"`
	System            *SystemStats   `json:"system,omitempty"`
}

// SystemStats describes host and process memory.
type SystemStats struct {
	ProcessRSSBytes  uint64  `json:"process_rss_bytes"`
	HostTotalBytes   uint64  `json:"host_total_bytes"`
	HostUsedPercent  float64 `json:"host_used_percent"`
	HostAvailableMem uint64  `json:"host_available_bytes"`
}
