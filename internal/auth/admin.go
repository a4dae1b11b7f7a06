// Package auth verifies the admin bearer token for the management surface.
// Buyers are identified by the wallet address they submit; only admin
// operations require authentication.
package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
)

var ErrInvalidToken = errors.New("invalid admin token")

type AdminVerifier struct {
	token  string
	wallet string
}

// NewAdminVerifier binds the shared admin token to the admin's wallet
// identity, which operations compare against the stored sale admin.
func NewAdminVerifier(token, wallet string) *AdminVerifier {
	return &AdminVerifier{token: strings.TrimSpace(token), wallet: strings.TrimSpace(wallet)}
}

// Verify checks the presented token and returns the admin wallet identity.
func (v *AdminVerifier) Verify(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" || v.token == "" {
		return "", ErrInvalidToken
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(v.token)) != 1 {
		return "", ErrInvalidToken
	}
	return v.wallet, nil
}

func (v *AdminVerifier) Wallet() string { return v.wallet }
