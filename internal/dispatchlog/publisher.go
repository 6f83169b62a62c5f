// Package dispatchlog provides runtime call capture and processing.
package dispatchlog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/responder/responder/internal/metrics"
)

const (
	// StreamKey is the Redis stream for dispatch events.
	StreamKey = "stream:dispatch_events"

	// DeadLetterStreamKey is the Redis stream for poison messages.
	DeadLetterStreamKey = "stream:dispatch_events:dlq"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000

	// PublishTimeout is the max time to wait for Redis publish.
	PublishTimeout = 100 * time.Millisecond
)

// DispatchEventPayload is the compressed event format for Redis stream.
type DispatchEventPayload struct {
	OwnerID      string `json:"oid"`           // owner_id
	EndpointID   string `json:"eid,omitempty"` // endpoint_id, empty when unresolved
	Slug         string `json:"s"`             // slug
	Method       string `json:"m"`             // method
	Status       int    `json:"st"`            // HTTP status of the outcome
	DenialReason string `json:"dr,omitempty"`  // denial_reason
	CallerHash   string `json:"ch"`            // caller_hash
	DispatchedAt int64  `json:"t"`             // Unix milliseconds
}

// Publisher enqueues dispatch events to Redis stream.
type Publisher struct {
	redis   *redis.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPublisher creates a new dispatch event publisher.
func NewPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "dispatchlog.publisher"),
		metrics: recorder,
	}
}

// Publish adds a dispatch event to the stream synchronously.
func (p *Publisher) Publish(ctx context.Context, event DispatchEventPayload) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	result, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true, // ~MAXLEN for performance
		ID:     "*",  // Auto-generate ID
		Values: map[string]interface{}{
			"payload": string(data),
		},
	}).Result()

	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	return result, nil
}

// PublishAsync publishes without blocking the caller.
// Errors are logged but not returned (fire-and-forget).
func (p *Publisher) PublishAsync(event DispatchEventPayload) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		streamID, err := p.Publish(ctx, event)
		if err != nil {
			p.logger.Warn("failed to publish dispatch event",
				"slug", event.Slug,
				"error", err,
			)
			p.metrics.IncDispatchEventPublished("dropped")
			return
		}

		p.logger.Debug("dispatch event published",
			"slug", event.Slug,
			"stream_id", streamID,
		)
		p.metrics.IncDispatchEventPublished("success")
	}()
}

// GenerateCallerHash creates a privacy-safe caller identifier.
// Uses SHA256(IP + UserAgent + daily_salt) truncated to 16 hex chars.
func GenerateCallerHash(ip, userAgent string, dispatchedAt time.Time) string {
	// Daily salt rotates at midnight UTC
	dailySalt := fmt.Sprintf("responder:%s", dispatchedAt.UTC().Format("2006-01-02"))

	data := ip + userAgent + dailySalt
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])[:16]
}
