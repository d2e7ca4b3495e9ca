package auth

import (
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)

	signed, err := tokens.Issue("user-123", "user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	identity, err := tokens.Verify(signed)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if identity.SubjectID != "user-123" {
		t.Fatalf("expected subject user-123, got %q", identity.SubjectID)
	}
	if identity.Role != "user" {
		t.Fatalf("expected role user, got %q", identity.Role)
	}
}

func TestVerifyCarriesAdminRole(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)

	signed, err := tokens.Issue("admin-1", "admin")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	identity, err := tokens.Verify(signed)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if identity.Role != "admin" {
		t.Fatalf("expected role admin, got %q", identity.Role)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	tokens := NewTokens("test-secret", -time.Minute)

	signed, err := tokens.Issue("user-123", "user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := tokens.Verify(signed); err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signed, err := NewTokens("secret-a", time.Hour).Issue("user-123", "user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := NewTokens("secret-b", time.Hour).Verify(signed); err == nil {
		t.Fatal("expected wrong-key token to fail verification")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)

	if _, err := tokens.Verify("not-a-token"); err == nil {
		t.Fatal("expected malformed token to fail verification")
	}
}
