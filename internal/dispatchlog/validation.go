// Package dispatchlog provides runtime call capture and processing.
package dispatchlog

import "fmt"

const (
	maxSlugLength    = 64
	callerHashLength = 16
)

// ValidateDispatchEventPayload validates dispatch event payload fields.
func ValidateDispatchEventPayload(payload DispatchEventPayload) error {
	if payload.OwnerID == "" {
		return fmt.Errorf("owner_id is required")
	}
	if payload.Slug == "" {
		return fmt.Errorf("slug is required")
	}
	if len(payload.Slug) > maxSlugLength {
		return fmt.Errorf("slug too long")
	}
	if payload.Method == "" {
		return fmt.Errorf("method is required")
	}
	if payload.Status < 100 || payload.Status > 599 {
		return fmt.Errorf("status out of range")
	}
	if payload.CallerHash == "" {
		return fmt.Errorf("caller_hash is required")
	}
	if len(payload.CallerHash) != callerHashLength || !isHex(payload.CallerHash) {
		return fmt.Errorf("caller_hash must be %d hex chars", callerHashLength)
	}
	if payload.DispatchedAt <= 0 {
		return fmt.Errorf("dispatched_at must be set")
	}
	return nil
}

func isHex(value string) bool {
	for i := 0; i < len(value); i++ {
		ch := value[i]
		if (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F') {
			continue
		}
		return false
	}
	return true
}
