package sessions

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"

	apperrors "github.com/jrsteele09/go-account-api/internal/errors"
)

// Session is the caller-held token bundle. The server never stores it: it is
// handed to the caller after sign-in and sent back on every request, and the
// caller must re-store it whenever a response carries a refreshed copy.
type Session struct {
	AccessToken  string `json:"access_token"`             // Required
	RefreshToken string `json:"refresh_token,omitempty"`  // Empty when the provider issued none; refresh is then impossible
	IDTokenNonce string `json:"id_token_nonce,omitempty"` // Only set when an ID token was negotiated
}

// CanRefresh reports whether the session carries a refresh token
func (s Session) CanRefresh() bool {
	return s.RefreshToken != ""
}

// Encode turns a session into an opaque string safe for an HTTP header or
// cookie: unpadded base64url of its compact JSON form. The encoding is a
// representation only; it is neither signed nor encrypted.
func Encode(s Session) (string, error) {
	if s.AccessToken == "" {
		return "", apperrors.Wrapf(apperrors.ErrInvalidSession, "encode: missing access token")
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return "", apperrors.Wrapf(err, "encode session")
	}
	return base64.RawURLEncoding.EncodeToString(payload), nil
}

// Decode reverses Encode. Anything that is not base64url of a JSON object with
// an access token is rejected with ErrInvalidSession.
func Decode(encoded string) (Session, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return Session{}, apperrors.Wrapf(apperrors.ErrInvalidSession, "decode: empty")
	}

	// Tolerate padded input from clients that re-encode with padding
	payload, err := base64.RawURLEncoding.Strict().DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return Session{}, apperrors.Wrapf(apperrors.ErrInvalidSession, "decode: not base64url")
	}

	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 || payload[0] != '{' {
		return Session{}, apperrors.Wrapf(apperrors.ErrInvalidSession, "decode: not a JSON object")
	}

	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return Session{}, apperrors.Wrapf(apperrors.ErrInvalidSession, "decode: malformed JSON")
	}
	if s.AccessToken == "" {
		return Session{}, apperrors.Wrapf(apperrors.ErrInvalidSession, "decode: missing access token")
	}
	return s, nil
}
