package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/responder/responder/internal/metrics"
)

// MetricsHandler exposes runtime metrics in Prometheus text format.
type MetricsHandler struct {
	source metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(source metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{source: source}
}

// Metrics handles GET /metrics.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	snap := h.source.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	fmt.Fprintf(w, "# HELP responder_dispatch_cache_hits_total Dispatch lookups served from cache.\n")
	fmt.Fprintf(w, "# TYPE responder_dispatch_cache_hits_total counter\n")
	fmt.Fprintf(w, "responder_dispatch_cache_hits_total %d\n", snap.DispatchCacheHits)

	fmt.Fprintf(w, "# HELP responder_dispatch_cache_misses_total Dispatch lookups that fell through to the store.\n")
	fmt.Fprintf(w, "# TYPE responder_dispatch_cache_misses_total counter\n")
	fmt.Fprintf(w, "responder_dispatch_cache_misses_total %d\n", snap.DispatchCacheMisses)

	fmt.Fprintf(w, "# HELP responder_dispatch_denials_total Dispatches refused by the access check.\n")
	fmt.Fprintf(w, "# TYPE responder_dispatch_denials_total counter\n")
	for _, reason := range sortedKeys(snap.DispatchDenials) {
		fmt.Fprintf(w, "responder_dispatch_denials_total{reason=%q} %d\n", reason, snap.DispatchDenials[reason])
	}

	fmt.Fprintf(w, "# HELP responder_dispatch_duration_seconds Time spent resolving and serving dispatches.\n")
	fmt.Fprintf(w, "# TYPE responder_dispatch_duration_seconds summary\n")
	fmt.Fprintf(w, "responder_dispatch_duration_seconds_sum %f\n", float64(snap.DispatchDurationTotalNs)/1e9)
	fmt.Fprintf(w, "responder_dispatch_duration_seconds_count %d\n", snap.DispatchDurationCount)

	fmt.Fprintf(w, "# HELP responder_endpoints_created_total Endpoints created.\n")
	fmt.Fprintf(w, "# TYPE responder_endpoints_created_total counter\n")
	fmt.Fprintf(w, "responder_endpoints_created_total %d\n", snap.EndpointsCreated)

	fmt.Fprintf(w, "# HELP responder_endpoints_updated_total Endpoints updated.\n")
	fmt.Fprintf(w, "# TYPE responder_endpoints_updated_total counter\n")
	fmt.Fprintf(w, "responder_endpoints_updated_total %d\n", snap.EndpointsUpdated)

	fmt.Fprintf(w, "# HELP responder_endpoints_deleted_total Endpoints deleted.\n")
	fmt.Fprintf(w, "# TYPE responder_endpoints_deleted_total counter\n")
	fmt.Fprintf(w, "responder_endpoints_deleted_total %d\n", snap.EndpointsDeleted)

	fmt.Fprintf(w, "# HELP responder_dispatch_events_published_total Dispatch events enqueued to the stream.\n")
	fmt.Fprintf(w, "# TYPE responder_dispatch_events_published_total counter\n")
	for _, status := range sortedKeys(snap.EventsPublished) {
		fmt.Fprintf(w, "responder_dispatch_events_published_total{status=%q} %d\n", status, snap.EventsPublished[status])
	}

	fmt.Fprintf(w, "# HELP responder_dispatch_events_processed_total Dispatch events consumed by the worker.\n")
	fmt.Fprintf(w, "# TYPE responder_dispatch_events_processed_total counter\n")
	for _, status := range sortedKeys(snap.EventsProcessed) {
		fmt.Fprintf(w, "responder_dispatch_events_processed_total{status=%q} %d\n", status, snap.EventsProcessed[status])
	}

	fmt.Fprintf(w, "# HELP responder_dispatch_queue_depth Pending entries in the dispatch event stream.\n")
	fmt.Fprintf(w, "# TYPE responder_dispatch_queue_depth gauge\n")
	fmt.Fprintf(w, "responder_dispatch_queue_depth %d\n", snap.QueueDepth)
}

func sortedKeys(m map[string]uint64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
