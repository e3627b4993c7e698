package security

import (
	"errors"
	"testing"

	"github.com/cptblues/team-visio/internal/domain"
)

func TestHashPassword(t *testing.T) {
	cfg := &BcryptConfig{Cost: 4}

	hash, err := HashPassword("password1", cfg)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "password1" || hash == "" {
		t.Fatal("hash must not be empty or equal to the password")
	}

	if err := ComparePassword(hash, "password1"); err != nil {
		t.Fatalf("ComparePassword: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Fatal("wrong password accepted")
	}
}

func TestHashPassword_MinLength(t *testing.T) {
	if _, err := HashPassword("short", nil); !errors.Is(err, domain.ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}

	cfg := &BcryptConfig{Cost: 4, MinLength: 3}
	if _, err := HashPassword("abc", cfg); err != nil {
		t.Fatalf("custom min length: %v", err)
	}
}

func TestRandomStringURLSafe(t *testing.T) {
	a, err := RandomStringURLSafe(32)
	if err != nil {
		t.Fatal(err)
	}
	b, err := RandomStringURLSafe(32)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("two random strings collided")
	}
	if SHA256HexOfString(a) == SHA256HexOfString(b) {
		t.Fatal("hash collision")
	}
	if len(SHA256HexOfString(a)) != 64 {
		t.Fatalf("unexpected hash length: %d", len(SHA256HexOfString(a)))
	}
}
