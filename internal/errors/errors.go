package errors

import (
	"errors"
	"fmt"
)

// Common error types for the account API
var (
	// Session errors
	ErrInvalidSession = errors.New("invalid session")

	// Authorisation errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrUserDisabled = errors.New("user is disabled or remotely signed out")

	// Downstream errors
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// Storage errors
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// ErrIDTokenNotNegotiated is the panic value raised when ID token claims are
	// read from tokens that were exchanged without a nonce. It is a programming
	// error and is never returned.
	ErrIDTokenNotNegotiated = errors.New("id token was not negotiated: no nonce supplied to the authorization request")
)

// OAuthFailure is any rejection by the identity provider or by a downstream
// service that refused our tokens, reduced to the provider's (code, description) pair.
type OAuthFailure struct {
	Code        string
	Description string
}

func (e *OAuthFailure) Error() string {
	if e.Description == "" {
		return "oauth failure: " + e.Code
	}
	return fmt.Sprintf("oauth failure: %s: %s", e.Code, e.Description)
}

// NewOAuthFailure builds an OAuthFailure
func NewOAuthFailure(code, description string) *OAuthFailure {
	return &OAuthFailure{Code: code, Description: description}
}

// IsOAuthFailure reports whether err's chain contains an OAuthFailure
func IsOAuthFailure(err error) bool {
	var f *OAuthFailure
	return errors.As(err, &f)
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
