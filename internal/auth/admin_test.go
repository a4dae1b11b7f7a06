package auth

import (
	"errors"
	"testing"
)

func TestVerify(t *testing.T) {
	v := NewAdminVerifier(" secret ", "admin-wallet")

	wallet, err := v.Verify("secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wallet != "admin-wallet" {
		t.Fatalf("got %q want admin-wallet", wallet)
	}

	for _, token := range []string{"", "wrong", "secrets", "secre"} {
		if _, err := v.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: expected invalid token, got %v", token, err)
		}
	}
}

func TestVerifyEmptyConfigured(t *testing.T) {
	v := NewAdminVerifier("", "admin-wallet")
	if _, err := v.Verify(""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("empty configured token must never verify, got %v", err)
	}
}
