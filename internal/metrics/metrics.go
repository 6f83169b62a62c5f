// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Dispatch metrics
	IncDispatchCacheHit()
	IncDispatchCacheMiss()
	IncDispatchDenied(reason string) // reason: "missing_key", "no_key_configured", "invalid_key"
	ObserveDispatchDuration(duration time.Duration)

	// Endpoint management metrics
	IncEndpointCreated()
	IncEndpointUpdated()
	IncEndpointDeleted()

	// Dispatch log pipeline metrics
	IncDispatchEventPublished(status string) // status: "success" or "dropped"
	IncDispatchEventProcessed(status string) // status: "success", "failed", "skipped"
	ObserveDispatchBatchSize(size int)
	ObserveDispatchBatchDuration(duration time.Duration)
	SetDispatchQueueDepth(depth int64)
	ObserveDispatchIngestLag(lag time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
