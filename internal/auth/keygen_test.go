package auth

import (
	"strings"
	"testing"
)

func TestGenerateAPIKey(t *testing.T) {
	t.Parallel()

	key, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey failed: %v", err)
	}

	if !strings.HasPrefix(key.Plaintext, "rk_") {
		t.Errorf("key should start with rk_, got: %s", key.Plaintext)
	}

	if len(key.Prefix) != KeyPrefixLen {
		t.Errorf("prefix should be %d chars, got: %d", KeyPrefixLen, len(key.Prefix))
	}

	if key.Hash == "" {
		t.Error("hash should not be empty")
	}
	if !strings.HasPrefix(key.Hash, "$argon2id$v=") {
		t.Errorf("hash should be in PHC format, got: %s", key.Hash)
	}

	if !strings.Contains(key.Plaintext, key.Prefix) {
		t.Error("plaintext should contain prefix")
	}
}

func TestGenerateAPIKey_Unique(t *testing.T) {
	t.Parallel()

	k1, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey failed: %v", err)
	}
	k2, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey failed: %v", err)
	}

	if k1.Plaintext == k2.Plaintext {
		t.Error("generated keys should be unique")
	}
}

func TestGenerateAPIKey_VerifiesAgainstOwnHash(t *testing.T) {
	t.Parallel()

	key, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey failed: %v", err)
	}

	ok, err := VerifyKey(key.Plaintext, key.Hash)
	if err != nil {
		t.Fatalf("VerifyKey failed: %v", err)
	}
	if !ok {
		t.Error("generated key should verify against its own hash")
	}
}

func TestParseAPIKey(t *testing.T) {
	t.Parallel()

	key, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey failed: %v", err)
	}

	parsed, err := ParseAPIKey(key.Plaintext)
	if err != nil {
		t.Fatalf("ParseAPIKey failed: %v", err)
	}

	if parsed.Prefix != key.Prefix {
		t.Errorf("parsed prefix = %s, want %s", parsed.Prefix, key.Prefix)
	}
	if len(parsed.Secret) != KeySecretLen {
		t.Errorf("secret should be %d chars, got %d", KeySecretLen, len(parsed.Secret))
	}
}

func TestParseAPIKey_Invalid(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"rk_",
		"rk_short_secret",
		"pk_abc123_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b",
		"rk_ABC123_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b", // uppercase prefix
	}

	for _, input := range cases {
		if _, err := ParseAPIKey(input); err == nil {
			t.Errorf("ParseAPIKey(%q) should fail", input)
		}
		if ValidateKeyFormat(input) {
			t.Errorf("ValidateKeyFormat(%q) should be false", input)
		}
	}
}
