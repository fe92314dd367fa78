package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewJWTManagerFromEnvRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_ISSUER", "issuer-for-test")

	manager, err := NewJWTManagerFromEnv()
	if err == nil {
		t.Fatalf("expected error when JWT_SECRET is empty")
	}
	if manager != nil {
		t.Fatalf("expected nil manager when env is invalid")
	}
}

func TestNewJWTManagerFromEnvUsesDefaultIssuer(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_ISSUER", "")

	manager, err := NewJWTManagerFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if manager.issuer != "newsdesk" {
		t.Fatalf("expected default issuer newsdesk, got %q", manager.issuer)
	}
	if manager.ttl != 24*time.Hour {
		t.Fatalf("expected default ttl 24h, got %s", manager.ttl)
	}
}

func TestJWTManagerSignAndParseRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_ISSUER", "test-issuer")

	manager, err := NewJWTManagerFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := manager.Sign("user-001", RoleSuperadmin)
	if err != nil {
		t.Fatalf("unexpected sign error: %v", err)
	}

	subject, role, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if subject != "user-001" {
		t.Fatalf("expected subject user-001, got %q", subject)
	}
	if role != RoleSuperadmin {
		t.Fatalf("expected role superadmin, got %q", role)
	}
}

func TestJWTManagerRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-a")
	managerA, err := NewJWTManagerFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	token, err := managerA.Sign("user-001", RoleUser)
	if err != nil {
		t.Fatalf("unexpected sign error: %v", err)
	}

	t.Setenv("JWT_SECRET", "secret-b")
	managerB, err := NewJWTManagerFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, err := managerB.Parse(token); err == nil {
		t.Fatalf("expected parse failure with a different secret")
	}
}

func TestJWTManagerRejectsUnexpectedAlgorithm(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	manager, err := NewJWTManagerFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// alg=none token with our claims must not pass
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-001"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("unexpected sign error: %v", err)
	}

	if _, _, err := manager.Parse(token); err == nil {
		t.Fatalf("expected parse failure for alg=none token")
	}
}
