package crypto

import (
	"testing"
	"time"
)

func TestGenerateSessionToken(t *testing.T) {
	token, err := GenerateSessionToken("sess-1", "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateSessionToken() unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("GenerateSessionToken() returned empty string")
	}
}

func TestValidateSessionTokenValid(t *testing.T) {
	secret := "test-secret"
	sessionID := "8f14e45f-ceea-467f-a7a1-000000000000"

	token, err := GenerateSessionToken(sessionID, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateSessionToken() unexpected error: %v", err)
	}

	claims, err := ValidateSessionToken(token, secret)
	if err != nil {
		t.Fatalf("ValidateSessionToken() unexpected error: %v", err)
	}
	if claims.SessionID != sessionID {
		t.Errorf("ValidateSessionToken() SessionID = %q, want %q", claims.SessionID, sessionID)
	}
}

func TestValidateSessionTokenInvalid(t *testing.T) {
	_, err := ValidateSessionToken("not-a-valid-token", "test-secret")
	if err == nil {
		t.Error("ValidateSessionToken() expected error for invalid token")
	}
}

func TestValidateSessionTokenWrongSecret(t *testing.T) {
	token, err := GenerateSessionToken("sess-1", "correct-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateSessionToken() unexpected error: %v", err)
	}

	_, err = ValidateSessionToken(token, "wrong-secret")
	if err == nil {
		t.Error("ValidateSessionToken() expected error for wrong secret")
	}
}

func TestValidateSessionTokenExpired(t *testing.T) {
	token, err := GenerateSessionToken("sess-1", "test-secret", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateSessionToken() unexpected error: %v", err)
	}

	_, err = ValidateSessionToken(token, "test-secret")
	if err == nil {
		t.Error("ValidateSessionToken() expected error for expired token")
	}
}
