// Package dto defines request and response types for the HTTP API.
package dto

import (
	"time"

	"github.com/responder/responder/internal/model"
	"github.com/responder/responder/internal/schema"
)

// CreateEndpointRequest represents the request body for creating an endpoint.
type CreateEndpointRequest struct {
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	Method        string `json:"method"`
	Visibility    string `json:"visibility,omitempty"`
	Response      string `json:"response"`
	Schema        string `json:"schema,omitempty"`
	EnforceSchema bool   `json:"enforce_schema,omitempty"`
}

// UpdateEndpointRequest represents the request body for updating an endpoint.
// Pointer fields distinguish "not provided" from zero values; clear_schema
// removes an existing schema, which a nil pointer cannot express.
type UpdateEndpointRequest struct {
	Name          *string `json:"name,omitempty"`
	Method        *string `json:"method,omitempty"`
	Visibility    *string `json:"visibility,omitempty"`
	Response      *string `json:"response,omitempty"`
	Schema        *string `json:"schema,omitempty"`
	ClearSchema   bool    `json:"clear_schema,omitempty"`
	EnforceSchema *bool   `json:"enforce_schema,omitempty"`
}

// EndpointResponse represents an endpoint in API responses. The stored
// response and schema documents are returned as raw JSON text.
type EndpointResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Method        string    `json:"method"`
	Visibility    string    `json:"visibility"`
	Response      string    `json:"response"`
	Schema        string    `json:"schema,omitempty"`
	EnforceSchema bool      `json:"enforce_schema"`
	OwnerUsername string    `json:"owner_username,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ToEndpointResponse converts a model.Endpoint to an EndpointResponse.
func ToEndpointResponse(e *model.Endpoint) EndpointResponse {
	return EndpointResponse{
		ID:            e.ID,
		Name:          e.Name,
		Slug:          e.Slug,
		Method:        string(e.Method),
		Visibility:    string(e.Visibility),
		Response:      e.Response.String(),
		Schema:        e.Schema.String(),
		EnforceSchema: e.EnforceSchema,
		OwnerUsername: e.OwnerUsername,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// ListEndpointsResponse groups the caller's own endpoints with the public
// catalog.
type ListEndpointsResponse struct {
	Owned  []EndpointResponse `json:"owned"`
	Public []EndpointResponse `json:"public"`
}

// DeleteEndpointResponse reports whether a delete removed anything.
type DeleteEndpointResponse struct {
	Deleted bool `json:"deleted"`
}

// SchemaIssue is a single schema validation failure in an error response.
type SchemaIssue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response. Details is populated only for
// schema validation failures.
type ErrorResponse struct {
	Error   string        `json:"error"`
	Code    string        `json:"code,omitempty"`
	Details []SchemaIssue `json:"details,omitempty"`
}

// ToSchemaIssues converts validator issues into their response form.
func ToSchemaIssues(issues []schema.Issue) []SchemaIssue {
	out := make([]SchemaIssue, 0, len(issues))
	for _, issue := range issues {
		out = append(out, SchemaIssue{Path: issue.Path, Message: issue.Message})
	}
	return out
}

// APIKeyResponse returns a freshly issued API key. The plaintext key is
// shown exactly once; only its hash is stored.
type APIKeyResponse struct {
	Key    string `json:"key"`
	Prefix string `json:"prefix"`
}

// OwnerResponse represents an owner account in API responses.
type OwnerResponse struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Admin        bool      `json:"admin"`
	Active       bool      `json:"active"`
	APIKeyPrefix string    `json:"api_key_prefix,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToOwnerResponse converts a model.Owner to an OwnerResponse.
func ToOwnerResponse(o *model.Owner) OwnerResponse {
	return OwnerResponse{
		ID:           o.ID,
		Username:     o.Username,
		Name:         o.Name,
		Admin:        o.Admin,
		Active:       o.Active,
		APIKeyPrefix: o.APIKeyPrefix,
		CreatedAt:    o.CreatedAt,
	}
}

// DispatchEventResponse represents a recorded endpoint call.
type DispatchEventResponse struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Method       string    `json:"method"`
	Status       int       `json:"status"`
	DenialReason string    `json:"denial_reason,omitempty"`
	CallerHash   string    `json:"caller_hash"`
	DispatchedAt time.Time `json:"dispatched_at"`
}

// ToDispatchEventResponse converts a model.DispatchEvent.
func ToDispatchEventResponse(e *model.DispatchEvent) DispatchEventResponse {
	return DispatchEventResponse{
		ID:           e.ID,
		Slug:         e.Slug,
		Method:       e.Method,
		Status:       e.Status,
		DenialReason: e.DenialReason,
		CallerHash:   e.CallerHash,
		DispatchedAt: e.DispatchedAt,
	}
}
