package handler

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/yndnr/stackkv-go/internal/infra/buildinfo"
)

// handleStats handles GET /stats.
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		Build:         buildinfo.Get(),
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	}
	if h.store != nil {
		resp.Store = h.store.Stats(r.Context())
	}
	if h.server != nil {
		resp.ActiveConnections = h.server.ActiveConnections()
	}
	if h.systemStats {
		sys, err := collectSystemStats(r.Context())
		if err != nil {
			h.logger.Warn("failed to collect system stats", "error", err)
		}
		resp.System = sys
	}

	h.writeJSON(w, r, http.StatusOK, resp)
}

// collectSystemStats reads host and process memory. A partial result is
// returned together with the first error.
func collectSystemStats(ctx context.Context) (*SystemStats, error) {
	sys := &SystemStats{}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return sys, err
	}
	sys.HostTotalBytes = vm.Total
	sys.HostAvailableMem = vm.Available
	sys.HostUsedPercent = vm.UsedPercent

	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return sys, err
	}
	info, err := proc.MemoryInfoWithContext(ctx)
	if err != nil {
		return sys, err
	}
	sys.ProcessRSSBytes = info.RSS

	return sys, nil
}
