package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/responder/responder/internal/metrics"
)

func TestMetricsExposition(t *testing.T) {
	t.Parallel()

	rec := metrics.NewInMemory()
	rec.IncDispatchCacheHit()
	rec.IncDispatchCacheHit()
	rec.IncDispatchCacheMiss()
	rec.IncDispatchDenied("missing_key")
	rec.IncEndpointCreated()
	rec.ObserveDispatchDuration(50 * time.Millisecond)
	rec.IncDispatchEventPublished("ok")
	rec.SetDispatchQueueDepth(7)

	h := NewMetricsHandler(rec)
	w := httptest.NewRecorder()
	h.Metrics(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body := w.Body.String()
	wantLines := []string{
		"responder_dispatch_cache_hits_total 2",
		"responder_dispatch_cache_misses_total 1",
		`responder_dispatch_denials_total{reason="missing_key"} 1`,
		"responder_endpoints_created_total 1",
		"responder_dispatch_duration_seconds_count 1",
		`responder_dispatch_events_published_total{status="ok"} 1`,
		"responder_dispatch_queue_depth 7",
	}
	for _, line := range wantLines {
		if !strings.Contains(body, line) {
			t.Errorf("exposition missing %q", line)
		}
	}
}
