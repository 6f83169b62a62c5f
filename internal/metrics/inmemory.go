package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	DispatchCacheHits       uint64
	DispatchCacheMisses     uint64
	DispatchDenials         map[string]uint64
	DispatchDurationCount   uint64
	DispatchDurationTotalNs int64
	EndpointsCreated        uint64
	EndpointsUpdated        uint64
	EndpointsDeleted        uint64
	EventsPublished         map[string]uint64
	EventsProcessed         map[string]uint64
	QueueDepth              int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	dispatchCacheHits       uint64
	dispatchCacheMisses     uint64
	dispatchDurationCount   uint64
	dispatchDurationTotalNs int64
	endpointsCreated        uint64
	endpointsUpdated        uint64
	endpointsDeleted        uint64
	queueDepth              int64

	mu              sync.Mutex
	dispatchDenials map[string]uint64
	eventsPublished map[string]uint64
	eventsProcessed map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		dispatchDenials: make(map[string]uint64),
		eventsPublished: make(map[string]uint64),
		eventsProcessed: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	denials := make(map[string]uint64, len(m.dispatchDenials))
	for k, v := range m.dispatchDenials {
		denials[k] = v
	}
	published := make(map[string]uint64, len(m.eventsPublished))
	for k, v := range m.eventsPublished {
		published[k] = v
	}
	processed := make(map[string]uint64, len(m.eventsProcessed))
	for k, v := range m.eventsProcessed {
		processed[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		DispatchCacheHits:       atomic.LoadUint64(&m.dispatchCacheHits),
		DispatchCacheMisses:     atomic.LoadUint64(&m.dispatchCacheMisses),
		DispatchDenials:         denials,
		DispatchDurationCount:   atomic.LoadUint64(&m.dispatchDurationCount),
		DispatchDurationTotalNs: atomic.LoadInt64(&m.dispatchDurationTotalNs),
		EndpointsCreated:        atomic.LoadUint64(&m.endpointsCreated),
		EndpointsUpdated:        atomic.LoadUint64(&m.endpointsUpdated),
		EndpointsDeleted:        atomic.LoadUint64(&m.endpointsDeleted),
		EventsPublished:         published,
		EventsProcessed:         processed,
		QueueDepth:              atomic.LoadInt64(&m.queueDepth),
	}
}

// IncDispatchCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncDispatchCacheHit() {
	atomic.AddUint64(&m.dispatchCacheHits, 1)
}

// IncDispatchCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncDispatchCacheMiss() {
	atomic.AddUint64(&m.dispatchCacheMisses, 1)
}

// IncDispatchDenied increments the denial counter for a reason.
func (m *InMemoryRecorder) IncDispatchDenied(reason string) {
	m.mu.Lock()
	m.dispatchDenials[reason]++
	m.mu.Unlock()
}

// ObserveDispatchDuration records dispatch duration.
func (m *InMemoryRecorder) ObserveDispatchDuration(duration time.Duration) {
	atomic.AddUint64(&m.dispatchDurationCount, 1)
	atomic.AddInt64(&m.dispatchDurationTotalNs, duration.Nanoseconds())
}

// IncEndpointCreated increments endpoint created counter.
func (m *InMemoryRecorder) IncEndpointCreated() {
	atomic.AddUint64(&m.endpointsCreated, 1)
}

// IncEndpointUpdated increments endpoint updated counter.
func (m *InMemoryRecorder) IncEndpointUpdated() {
	atomic.AddUint64(&m.endpointsUpdated, 1)
}

// IncEndpointDeleted increments endpoint deleted counter.
func (m *InMemoryRecorder) IncEndpointDeleted() {
	atomic.AddUint64(&m.endpointsDeleted, 1)
}

// IncDispatchEventPublished increments the published counter for a status.
func (m *InMemoryRecorder) IncDispatchEventPublished(status string) {
	m.mu.Lock()
	m.eventsPublished[status]++
	m.mu.Unlock()
}

// IncDispatchEventProcessed increments the processed counter for a status.
func (m *InMemoryRecorder) IncDispatchEventProcessed(status string) {
	m.mu.Lock()
	m.eventsProcessed[status]++
	m.mu.Unlock()
}

// ObserveDispatchBatchSize is retained for interface completeness.
func (m *InMemoryRecorder) ObserveDispatchBatchSize(size int) {}

// ObserveDispatchBatchDuration is retained for interface completeness.
func (m *InMemoryRecorder) ObserveDispatchBatchDuration(duration time.Duration) {}

// SetDispatchQueueDepth records the current stream depth.
func (m *InMemoryRecorder) SetDispatchQueueDepth(depth int64) {
	atomic.StoreInt64(&m.queueDepth, depth)
}

// ObserveDispatchIngestLag is retained for interface completeness.
func (m *InMemoryRecorder) ObserveDispatchIngestLag(lag time.Duration) {}
