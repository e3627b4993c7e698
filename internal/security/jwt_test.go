package security

import (
	"errors"
	"testing"
	"time"
)

func TestJWTSigner_RoundTrip(t *testing.T) {
	s := NewJWTSigner([]byte("secret"), "team-visio", "team-visio-web", 15*time.Minute, 30*time.Second)

	raw, err := s.SignAccessToken("user-1", time.Now())
	if err != nil {
		t.Fatalf("SignAccessToken: %v", err)
	}

	claims, err := s.ParseAndValidate(raw)
	if err != nil {
		t.Fatalf("ParseAndValidate: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("subject = %q", claims.Subject)
	}
}

func TestJWTSigner_WrongSecret(t *testing.T) {
	signer := NewJWTSigner([]byte("secret-a"), "iss", "aud", time.Minute, 0)
	other := NewJWTSigner([]byte("secret-b"), "iss", "aud", time.Minute, 0)

	raw, err := signer.SignAccessToken("u", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.ParseAndValidate(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTSigner_Expired(t *testing.T) {
	s := NewJWTSigner([]byte("secret"), "iss", "aud", time.Minute, 0)

	raw, err := s.SignAccessToken("u", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.ParseAndValidate(raw); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestJWTSigner_IssuerAudience(t *testing.T) {
	signer := NewJWTSigner([]byte("secret"), "other-iss", "aud", time.Minute, 0)
	verifier := NewJWTSigner([]byte("secret"), "iss", "aud", time.Minute, 0)

	raw, _ := signer.SignAccessToken("u", time.Now())
	if _, err := verifier.ParseAndValidate(raw); !errors.Is(err, ErrInvalidIssuer) {
		t.Fatalf("expected ErrInvalidIssuer, got %v", err)
	}

	signer = NewJWTSigner([]byte("secret"), "iss", "other-aud", time.Minute, 0)
	raw, _ = signer.SignAccessToken("u", time.Now())
	if _, err := verifier.ParseAndValidate(raw); !errors.Is(err, ErrInvalidAudience) {
		t.Fatalf("expected ErrInvalidAudience, got %v", err)
	}
}

func TestJWTSigner_EmptySubject(t *testing.T) {
	s := NewJWTSigner([]byte("secret"), "iss", "aud", time.Minute, 0)

	raw, _ := s.SignAccessToken("", time.Now())
	if _, err := s.ParseAndValidate(raw); !errors.Is(err, ErrInvalidSubject) {
		t.Fatalf("expected ErrInvalidSubject, got %v", err)
	}
}
