package benchmark

import (
	"context"
	"fmt"
	"runtime"
	"testing"

	"github.com/yndnr/stackkv-go/internal/core/domain"
	"github.com/yndnr/stackkv-go/internal/storage/memory"
)

// KeyCounts defines the global key counts for benchmarking.
var KeyCounts = []int{1000, 10000, 100000, 500000}

// SmallKeyCounts for quick benchmarks.
var SmallKeyCounts = []int{1000, 10000}

// newSessionID generates a session ID or fails the benchmark.
func newSessionID(b *testing.B) domain.SessionID {
	b.Helper()
	sid, err := domain.NewSessionID()
	if err != nil {
		b.Fatalf("NewSessionID failed: %v", err)
	}
	return sid
}

func keyName(i int) string {
	return fmt.Sprintf("key-%08d", i)
}

// prefillStore writes count keys into the global state.
func prefillStore(ctx context.Context, b *testing.B, store *memory.Store, count int) {
	b.Helper()
	sid := newSessionID(b)
	for i := 0; i < count; i++ {
		if err := store.Put(ctx, sid, keyName(i), "value"); err != nil {
			b.Fatalf("Put failed: %v", err)
		}
	}
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithKeyCounts runs a benchmark function with various key counts.
func runWithKeyCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("keys_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
