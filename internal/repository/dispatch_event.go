package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/responder/responder/internal/model"
)

// DispatchEventRepository provides database access for dispatch events.
type DispatchEventRepository struct {
	repo *Repository
}

// NewDispatchEventRepository creates a new DispatchEventRepository.
func NewDispatchEventRepository(repo *Repository) *DispatchEventRepository {
	return &DispatchEventRepository{repo: repo}
}

// BulkInsert inserts multiple dispatch events with idempotency via
// ON CONFLICT DO NOTHING on the stream event ID.
func (r *DispatchEventRepository) BulkInsert(ctx context.Context, events []*model.DispatchEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}

	query := `
		INSERT INTO dispatch_events (
			id, event_id, owner_id, endpoint_id, slug, method,
			status, denial_reason, caller_hash, dispatched_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (event_id) DO NOTHING
	`

	for _, event := range events {
		batch.Queue(query,
			event.ID,
			event.EventID,
			event.OwnerID,
			nullableString(event.EndpointID),
			event.Slug,
			event.Method,
			event.Status,
			nullableString(event.DenialReason),
			event.CallerHash,
			event.DispatchedAt,
		)
	}

	results := r.repo.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(events); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert event %d: %w", i, err)
		}
	}

	return nil
}

// ListByEndpoint retrieves recent dispatch events for an endpoint,
// scoped to its owner, newest first.
func (r *DispatchEventRepository) ListByEndpoint(ctx context.Context, ownerID, endpointID string, limit int) ([]*model.DispatchEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT id, event_id, owner_id, endpoint_id, slug, method, status, denial_reason, caller_hash, dispatched_at, created_at
		FROM dispatch_events
		WHERE owner_id = $1 AND endpoint_id = $2
		ORDER BY dispatched_at DESC
		LIMIT $3
	`

	rows, err := r.repo.pool.Query(ctx, query, ownerID, endpointID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list dispatch events: %w", err)
	}
	defer rows.Close()

	var events []*model.DispatchEvent
	for rows.Next() {
		var e model.DispatchEvent
		var endpointID, denialReason *string

		err := rows.Scan(
			&e.ID,
			&e.EventID,
			&e.OwnerID,
			&endpointID,
			&e.Slug,
			&e.Method,
			&e.Status,
			&denialReason,
			&e.CallerHash,
			&e.DispatchedAt,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dispatch event: %w", err)
		}

		if endpointID != nil {
			e.EndpointID = *endpointID
		}
		if denialReason != nil {
			e.DenialReason = *denialReason
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dispatch events: %w", err)
	}

	return events, nil
}
