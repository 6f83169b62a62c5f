// Package auth provides API key generation, hashing, and access control.
package auth

import "github.com/responder/responder/internal/model"

// DenialReason identifies why access to an endpoint was refused.
type DenialReason string

const (
	DenialMissingKey      DenialReason = "missing_key"
	DenialNoKeyConfigured DenialReason = "no_key_configured"
	DenialInvalidKey      DenialReason = "invalid_key"
)

// Decision is the outcome of an access check.
type Decision struct {
	Allowed bool
	Reason  DenialReason // set only when Allowed is false
}

// Authorize decides whether a request may reach the given endpoint.
// Public endpoints always pass. Private endpoints require the presented
// key to verify against the owner's stored Argon2id verifier; the
// comparison never touches plaintext equality.
func Authorize(endpoint *model.Endpoint, owner *model.Owner, presentedKey string) Decision {
	if endpoint.IsPublic() {
		return Decision{Allowed: true}
	}

	if presentedKey == "" {
		return Decision{Reason: DenialMissingKey}
	}

	if !owner.HasAPIKey() {
		return Decision{Reason: DenialNoKeyConfigured}
	}

	ok, err := VerifyKey(presentedKey, owner.APIKeyHash)
	if err != nil || !ok {
		return Decision{Reason: DenialInvalidKey}
	}

	return Decision{Allowed: true}
}
