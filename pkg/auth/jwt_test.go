package auth

import (
	"testing"
	"time"
)

func TestAccessToken_RoundTrip(t *testing.T) {
	token, err := NewAccessToken(42, "kara", "intern", "test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	claims, err := Parse(token, "test-secret")
	if err != nil {
		t.Fatal(err)
	}
	if claims.Sub != 42 || claims.Username != "kara" || claims.Role != "intern" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	token, err := NewAccessToken(1, "admin", "admin", "secret-a", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Parse(token, "secret-b"); err == nil {
		t.Fatal("expected parse to fail with wrong secret")
	}
}

func TestParse_Expired(t *testing.T) {
	token, err := NewAccessToken(1, "admin", "admin", "secret", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Parse(token, "secret"); err == nil {
		t.Fatal("expected parse to fail for expired token")
	}
}
