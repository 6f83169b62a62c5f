package auth

import (
	"strings"
	"testing"
)

func TestHashKey_Format(t *testing.T) {
	t.Parallel()

	hash, err := HashKey("some-secret-key")
	if err != nil {
		t.Fatalf("HashKey failed: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$v=") {
		t.Errorf("hash should be in PHC format, got: %s", hash)
	}

	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		t.Errorf("PHC string should have 6 parts, got %d", len(parts))
	}
}

func TestHashKey_UniqueSalts(t *testing.T) {
	t.Parallel()

	hash1, err := HashKey("same-key")
	if err != nil {
		t.Fatalf("HashKey failed: %v", err)
	}
	hash2, err := HashKey("same-key")
	if err != nil {
		t.Fatalf("HashKey failed: %v", err)
	}

	if hash1 == hash2 {
		t.Error("two hashes of the same key should differ (random salt)")
	}
}

func TestVerifyKey_Correct(t *testing.T) {
	t.Parallel()

	hash, err := HashKey("correct-key")
	if err != nil {
		t.Fatalf("HashKey failed: %v", err)
	}

	ok, err := VerifyKey("correct-key", hash)
	if err != nil {
		t.Fatalf("VerifyKey failed: %v", err)
	}
	if !ok {
		t.Error("correct key should verify")
	}
}

func TestVerifyKey_Wrong(t *testing.T) {
	t.Parallel()

	hash, err := HashKey("correct-key")
	if err != nil {
		t.Fatalf("HashKey failed: %v", err)
	}

	ok, err := VerifyKey("wrong-key", hash)
	if err != nil {
		t.Fatalf("VerifyKey failed: %v", err)
	}
	if ok {
		t.Error("wrong key should not verify")
	}
}

func TestVerifyKey_MalformedHash(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"not-a-hash",
		"$argon2id$v=19$m=65536,t=3,p=4$short",
		"$bcrypt$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
	}

	for _, hash := range cases {
		if _, err := VerifyKey("key", hash); err == nil {
			t.Errorf("VerifyKey(%q) should fail", hash)
		}
	}
}

func TestQuickHash_Deterministic(t *testing.T) {
	t.Parallel()

	h1 := QuickHash("input")
	h2 := QuickHash("input")
	if h1 != h2 {
		t.Error("QuickHash should be deterministic")
	}
	if len(h1) != 32 {
		t.Errorf("QuickHash should return 32 hex chars, got %d", len(h1))
	}
	if QuickHash("other") == h1 {
		t.Error("different inputs should hash differently")
	}
}
