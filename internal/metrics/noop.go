package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncDispatchCacheHit is a no-op.
func (n *NoopRecorder) IncDispatchCacheHit() {}

// IncDispatchCacheMiss is a no-op.
func (n *NoopRecorder) IncDispatchCacheMiss() {}

// IncDispatchDenied is a no-op.
func (n *NoopRecorder) IncDispatchDenied(reason string) {}

// ObserveDispatchDuration is a no-op.
func (n *NoopRecorder) ObserveDispatchDuration(duration time.Duration) {}

// IncEndpointCreated is a no-op.
func (n *NoopRecorder) IncEndpointCreated() {}

// IncEndpointUpdated is a no-op.
func (n *NoopRecorder) IncEndpointUpdated() {}

// IncEndpointDeleted is a no-op.
func (n *NoopRecorder) IncEndpointDeleted() {}

// IncDispatchEventPublished is a no-op.
func (n *NoopRecorder) IncDispatchEventPublished(status string) {}

// IncDispatchEventProcessed is a no-op.
func (n *NoopRecorder) IncDispatchEventProcessed(status string) {}

// ObserveDispatchBatchSize is a no-op.
func (n *NoopRecorder) ObserveDispatchBatchSize(size int) {}

// ObserveDispatchBatchDuration is a no-op.
func (n *NoopRecorder) ObserveDispatchBatchDuration(duration time.Duration) {}

// SetDispatchQueueDepth is a no-op.
func (n *NoopRecorder) SetDispatchQueueDepth(depth int64) {}

// ObserveDispatchIngestLag is a no-op.
func (n *NoopRecorder) ObserveDispatchIngestLag(lag time.Duration) {}
