package sessions_test

import (
	"encoding/base64"
	"testing"

	apperrors "github.com/jrsteele09/go-account-api/internal/errors"
	"github.com/jrsteele09/go-account-api/sessions"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		session sessions.Session
	}{
		{"access only", sessions.Session{AccessToken: "access-token"}},
		{"with refresh", sessions.Session{AccessToken: "access-token", RefreshToken: "refresh-token"}},
		{"with nonce", sessions.Session{AccessToken: "a", RefreshToken: "r", IDTokenNonce: "nonce"}},
		{"awkward characters", sessions.Session{AccessToken: "a+/=\"\n", RefreshToken: "ü✓"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := sessions.Encode(tt.session)
			require.NoError(t, err)
			require.NotContains(t, encoded, "=")

			decoded, err := sessions.Decode(encoded)
			require.NoError(t, err)
			require.Equal(t, tt.session, decoded)
		})
	}
}

func TestEncode_Deterministic(t *testing.T) {
	s := sessions.Session{AccessToken: "a", RefreshToken: "r"}
	first, err := sessions.Encode(s)
	require.NoError(t, err)
	second, err := sessions.Encode(s)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestEncode_RequiresAccessToken(t *testing.T) {
	_, err := sessions.Encode(sessions.Session{RefreshToken: "r"})
	require.ErrorIs(t, err, apperrors.ErrInvalidSession)
}

func TestDecode_Invalid(t *testing.T) {
	b64 := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }

	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"not base64", "not-a-base64-string!"},
		{"plain words", "not a base64 string"},
		{"not json", b64("access-token")},
		{"json array", b64(`["access-token"]`)},
		{"malformed json", b64(`{"access_token":`)},
		{"missing access token", b64(`{"refresh_token":"r"}`)},
		{"empty access token", b64(`{"access_token":""}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sessions.Decode(tt.encoded)
			require.ErrorIs(t, err, apperrors.ErrInvalidSession)
		})
	}
}

func TestDecode_OptionalFieldsDefaultAbsent(t *testing.T) {
	s, err := sessions.Decode(base64.URLEncoding.EncodeToString([]byte(`{"access_token":"a"}`)))
	require.NoError(t, err)
	require.Equal(t, "a", s.AccessToken)
	require.False(t, s.CanRefresh())
	require.Empty(t, s.IDTokenNonce)
}
