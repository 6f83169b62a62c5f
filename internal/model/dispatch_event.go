// Package model defines domain entities for the application.
package model

import "time"

// DispatchEvent represents a single runtime call to a mock endpoint.
type DispatchEvent struct {
	ID      string `json:"id"`       // ULID (time-sortable)
	EventID string `json:"event_id"` // Idempotency key (Redis stream ID)

	// Endpoint reference. EndpointID is empty when the call never
	// resolved to an endpoint (owner or slug unknown).
	OwnerID    string `json:"owner_id"`
	EndpointID string `json:"endpoint_id,omitempty"`
	Slug       string `json:"slug"`

	// Outcome
	Method       string `json:"method"`
	Status       int    `json:"status"`
	DenialReason string `json:"denial_reason,omitempty"`

	// Privacy-safe caller identification: SHA256(IP + UA + daily_salt)[0:16]
	CallerHash string `json:"caller_hash"`

	DispatchedAt time.Time `json:"dispatched_at"`
	CreatedAt    time.Time `json:"created_at"` // DB insertion time
}
