package cache

import (
	"testing"
)

func TestHashIP_Deterministic(t *testing.T) {
	t.Parallel()

	ip := "192.168.1.100"

	hash1 := hashIP(ip)
	hash2 := hashIP(ip)

	if hash1 != hash2 {
		t.Error("Same IP should produce same hash")
	}
}

func TestHashIP_Length(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip   string
	}{
		{"IPv4", "192.168.1.1"},
		{"IPv4 localhost", "127.0.0.1"},
		{"IPv6 localhost", "::1"},
		{"IPv6 full", "2001:0db8:85a3:0000:0000:8a2e:0370:7334"},
		{"empty", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash := hashIP(tt.ip)
			// hashIP uses first 8 bytes of SHA256, encoded as 16 hex chars
			if len(hash) != 16 {
				t.Errorf("hashIP(%q) length = %d, want 16", tt.ip, len(hash))
			}
		})
	}
}

func TestHashIP_Different(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip1  string
		ip2  string
	}{
		{"different IPv4", "192.168.1.1", "192.168.1.2"},
		{"different last octet", "10.0.0.1", "10.0.0.2"},
		{"IPv4 vs IPv6", "127.0.0.1", "::1"},
		{"public vs private", "8.8.8.8", "192.168.1.1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash1 := hashIP(tt.ip1)
			hash2 := hashIP(tt.ip2)

			if hash1 == hash2 {
				t.Errorf("Different IPs should produce different hashes: %q and %q both produced %s", tt.ip1, tt.ip2, hash1)
			}
		})
	}
}

func TestEndpointKey_Format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ownerID  string
		slug     string
		expected string
	}{
		{"simple", "owner1", "get-user", "ep:owner1:get-user"},
		{"ulid owner", "01J5K3M9PQRSTVWXYZ0123456A", "orders", "ep:01J5K3M9PQRSTVWXYZ0123456A:orders"},
		{"slug with hyphens", "o1", "list-all-items", "ep:o1:list-all-items"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			key := endpointKey(tt.ownerID, tt.slug)
			if key != tt.expected {
				t.Errorf("endpointKey(%q, %q) = %q, want %q", tt.ownerID, tt.slug, key, tt.expected)
			}
		})
	}
}

func TestEndpointKey_DistinctOwners(t *testing.T) {
	t.Parallel()

	// Two owners with the same slug must never collide.
	k1 := endpointKey("owner-a", "users")
	k2 := endpointKey("owner-b", "users")

	if k1 == k2 {
		t.Errorf("keys for different owners collided: %q", k1)
	}
}
