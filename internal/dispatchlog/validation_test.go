package dispatchlog

import (
	"strings"
	"testing"
	"time"
)

func TestValidateDispatchEventPayload(t *testing.T) {
	valid := DispatchEventPayload{
		OwnerID:      "owner-1",
		EndpointID:   "ep-1",
		Slug:         "ping",
		Method:       "GET",
		Status:       200,
		CallerHash:   "0123456789abcdef",
		DispatchedAt: time.Now().UnixMilli(),
	}

	if err := ValidateDispatchEventPayload(valid); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}

	// Denied calls carry no endpoint ID but still validate.
	denied := valid
	denied.EndpointID = ""
	denied.Status = 401
	denied.DenialReason = "missing_key"
	if err := ValidateDispatchEventPayload(denied); err != nil {
		t.Fatalf("expected denied payload to validate, got %v", err)
	}

	cases := []struct {
		name    string
		payload DispatchEventPayload
	}{
		{"missing_owner_id", DispatchEventPayload{Slug: "ping", Method: "GET", Status: 200, CallerHash: "0123456789abcdef", DispatchedAt: 1}},
		{"missing_slug", DispatchEventPayload{OwnerID: "o", Method: "GET", Status: 200, CallerHash: "0123456789abcdef", DispatchedAt: 1}},
		{"slug_too_long", DispatchEventPayload{OwnerID: "o", Slug: strings.Repeat("a", 65), Method: "GET", Status: 200, CallerHash: "0123456789abcdef", DispatchedAt: 1}},
		{"missing_method", DispatchEventPayload{OwnerID: "o", Slug: "ping", Status: 200, CallerHash: "0123456789abcdef", DispatchedAt: 1}},
		{"status_out_of_range", DispatchEventPayload{OwnerID: "o", Slug: "ping", Method: "GET", Status: 42, CallerHash: "0123456789abcdef", DispatchedAt: 1}},
		{"missing_caller_hash", DispatchEventPayload{OwnerID: "o", Slug: "ping", Method: "GET", Status: 200, DispatchedAt: 1}},
		{"invalid_caller_hash", DispatchEventPayload{OwnerID: "o", Slug: "ping", Method: "GET", Status: 200, CallerHash: "not-hex", DispatchedAt: 1}},
		{"missing_dispatched_at", DispatchEventPayload{OwnerID: "o", Slug: "ping", Method: "GET", Status: 200, CallerHash: "0123456789abcdef"}},
	}

	for _, tc := range cases {
		if err := ValidateDispatchEventPayload(tc.payload); err == nil {
			t.Fatalf("expected error for %s", tc.name)
		}
	}
}

func TestIsHex(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"0123456789abcdef", true},
		{"ABCDEF", true},
		{"", true},
		{"xyz", false},
		{"01-23", false},
	}

	for _, test := range tests {
		if got := isHex(test.value); got != test.want {
			t.Errorf("isHex(%q) = %v, want %v", test.value, got, test.want)
		}
	}
}
