package oidcclient

import (
	"time"

	apperrors "github.com/jrsteele09/go-account-api/internal/errors"
)

// Claims are the ID token claims the broker reads
type Claims struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Nonce         string `json:"nonce"`
}

// Tokens is the result of a code or refresh exchange
type Tokens struct {
	AccessToken  string
	RefreshToken string // Empty when the provider issued none
	Expiry       time.Time

	claims *Claims // Set only when the exchange negotiated an ID token
}

// HasIDToken reports whether ID token claims are available
func (t *Tokens) HasIDToken() bool {
	return t != nil && t.claims != nil
}

// Claims returns the verified ID token claims. Calling it on tokens that were
// exchanged without a nonce is a programming error and panics with
// ErrIDTokenNotNegotiated.
func (t *Tokens) Claims() Claims {
	if !t.HasIDToken() {
		panic(apperrors.ErrIDTokenNotNegotiated)
	}
	return *t.claims
}
