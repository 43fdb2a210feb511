package kvserver

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yndnr/stackkv-go/internal/telemetry/metric"
)

func scrapeText(t *testing.T, reg *metric.Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}
