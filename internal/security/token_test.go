package security

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)

	token, err := manager.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if token == "" {
		t.Fatal("Generate() returned empty token")
	}

	userID, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if userID != "user-123" {
		t.Errorf("Verify() = %q, want %q", userID, "user-123")
	}
}

func TestTokenVerifyRejects(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)
	token, err := manager.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	tests := []struct {
		name    string
		manager *TokenManager
		token   string
	}{
		{
			name:    "garbage token",
			manager: manager,
			token:   "not.a.token",
		},
		{
			name:    "empty token",
			manager: manager,
			token:   "",
		},
		{
			name:    "wrong signing key",
			manager: NewTokenManager("other-secret", time.Hour),
			token:   token,
		},
		{
			name:    "expired token",
			manager: NewTokenManager("test-secret", -time.Minute),
			token:   mustGenerate(t, NewTokenManager("test-secret", -time.Minute), "user-123"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.manager.Verify(tt.token); err == nil {
				t.Error("Verify() should have failed")
			}
		})
	}
}

func mustGenerate(t *testing.T, m *TokenManager, userID string) string {
	t.Helper()
	token, err := m.Generate(userID)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	return token
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "" || hash == "secret123" {
		t.Errorf("HashPassword() = %q, want a non-empty hash", hash)
	}

	if !CheckPassword("secret123", hash) {
		t.Error("CheckPassword() should accept the original password")
	}
	if CheckPassword("wrong-password", hash) {
		t.Error("CheckPassword() should reject a wrong password")
	}
}
