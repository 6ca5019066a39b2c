package identity

import (
	"strings"
	"testing"

	"github.com/agendaly/agendaly-api/internal/apperr"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct-horse-battery" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !VerifyPassword(hash, "correct-horse-battery") {
		t.Fatal("expected password to verify")
	}
	if VerifyPassword(hash, "wrong") {
		t.Fatal("wrong password must not verify")
	}
}

func TestHashPasswordTooShort(t *testing.T) {
	if _, err := HashPassword("short"); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRandomPassword(t *testing.T) {
	a, err := RandomPassword(12)
	if err != nil {
		t.Fatalf("RandomPassword: %v", err)
	}
	b, err := RandomPassword(12)
	if err != nil {
		t.Fatalf("RandomPassword: %v", err)
	}
	if len(a) != 12 || a == b {
		t.Fatalf("expected distinct 12-char passwords, got %q and %q", a, b)
	}
	for _, r := range a {
		if !strings.ContainsRune(passwordAlphabet, r) {
			t.Fatalf("unexpected character %q", r)
		}
	}
	// below-minimum lengths are bumped up, not rejected
	c, err := RandomPassword(4)
	if err != nil || len(c) < minPasswordLength {
		t.Fatalf("short request should be padded, got %q (%v)", c, err)
	}
}
