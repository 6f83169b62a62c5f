// Package model defines domain entities for the application.
package model

import "time"

// Owner represents an account that defines and controls mock endpoints.
type Owner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Admin    bool   `json:"admin"`
	Active   bool   `json:"active"`

	// API key credential. Only the argon2id hash and the visible
	// prefix are stored; the plaintext key is shown once at issuance.
	APIKeyHash   string `json:"-"`
	APIKeyPrefix string `json:"api_key_prefix,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// HasAPIKey reports whether the owner has ever generated an API key.
func (o *Owner) HasAPIKey() bool {
	return o.APIKeyHash != ""
}

// OwnerContext holds the authenticated owner identity for a request.
// This is injected into the request context by the auth middleware.
type OwnerContext struct {
	OwnerID   string
	Username  string
	Admin     bool
	KeyPrefix string
}
