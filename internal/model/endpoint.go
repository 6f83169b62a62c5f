// Package model defines domain entities for the application.
package model

import "time"

// Method is the HTTP method a mock endpoint answers to.
// Only a closed allow-list of methods is supported.
type Method string

const (
	MethodGet  Method = "GET"
	MethodPost Method = "POST"
)

// AllowedMethods lists every method an endpoint may be defined with.
var AllowedMethods = []Method{MethodGet, MethodPost}

// IsValid checks if the method is in the allow-list.
func (m Method) IsValid() bool {
	for _, allowed := range AllowedMethods {
		if m == allowed {
			return true
		}
	}
	return false
}

// Visibility controls who may call an endpoint at dispatch time.
type Visibility string

const (
	// VisibilityPublic endpoints require no credential.
	VisibilityPublic Visibility = "public"
	// VisibilityPrivate endpoints require the owner's API key.
	VisibilityPrivate Visibility = "private"
)

// IsValid checks if the visibility is a known value.
func (v Visibility) IsValid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Endpoint represents a runtime-defined mock endpoint.
type Endpoint struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`

	// Slug is the URL path segment, unique per owner.
	Slug       string     `json:"slug"`
	Method     Method     `json:"method"`
	Visibility Visibility `json:"visibility"`

	// Response is the canned JSON body served at dispatch time,
	// stored in its canonical serialized form.
	Response JSONDocument `json:"-"`

	// Schema is an optional JSON Schema document. When EnforceSchema is
	// set, Response validated against it the last time it was written.
	Schema        JSONDocument `json:"-"`
	EnforceSchema bool         `json:"enforce_schema"`

	// OwnerUsername is joined in for public listings; not persisted
	// on the endpoints table itself.
	OwnerUsername string `json:"owner_username,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPublic reports whether the endpoint is callable without a credential.
func (e *Endpoint) IsPublic() bool {
	return e.Visibility == VisibilityPublic
}

// HasSchema reports whether a schema document is stored.
func (e *Endpoint) HasSchema() bool {
	return !e.Schema.IsZero()
}
