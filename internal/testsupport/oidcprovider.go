package testsupport

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// FakeClientID is the client the fake provider issues ID tokens for
const FakeClientID = "account-api"

// Grant is an authorization code the fake provider will redeem
type Grant struct {
	Subject string
	Email   string
	Nonce   string
	// OmitIDToken leaves id_token out of the token response
	OmitIDToken bool
	// OmitRefreshToken leaves refresh_token out of the token response
	OmitRefreshToken bool
}

// ProviderError makes the token endpoint reject the next request
type ProviderError struct {
	Status      int
	Code        string
	Description string
}

// FakeProvider is an OIDC provider served by httptest. It supports discovery,
// the authorization_code and refresh_token grants, and signs ID tokens with
// an in-memory RSA key.
type FakeProvider struct {
	Server *httptest.Server
	key    *rsa.PrivateKey

	mu            sync.Mutex
	grants        map[string]Grant
	refreshTokens map[string]bool
	nextError     *ProviderError
	rotateRefresh bool

	issued        atomic.Int64
	RefreshCalls  atomic.Int64
	ExchangeCalls atomic.Int64
}

// StartFakeProvider starts a provider that is closed when the test finishes
func StartFakeProvider(t *testing.T) *FakeProvider {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	p := &FakeProvider{key: key, grants: map[string]Grant{}, refreshTokens: map[string]bool{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", p.discovery)
	mux.HandleFunc("/token", p.token)
	p.Server = httptest.NewServer(mux)
	t.Cleanup(p.Server.Close)
	return p
}

// Issuer is the provider's issuer URL
func (p *FakeProvider) Issuer() string {
	return p.Server.URL
}

// KeySet verifies tokens signed by the provider without a JWKS endpoint
func (p *FakeProvider) KeySet() oidc.KeySet {
	return &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&p.key.PublicKey}}
}

// AddGrant registers an authorization code
func (p *FakeProvider) AddGrant(code string, g Grant) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.grants[code] = g
}

// AddRefreshToken registers a refresh token the provider will accept
func (p *FakeProvider) AddRefreshToken(refreshToken string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshTokens[refreshToken] = true
}

// FailNext makes the next token request fail with e
func (p *FakeProvider) FailNext(e ProviderError) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextError = &e
}

// RotateRefreshTokens makes refresh responses carry a new refresh token
func (p *FakeProvider) RotateRefreshTokens(rotate bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rotateRefresh = rotate
}

// SignIDToken mints an ID token for the fake client
func (p *FakeProvider) SignIDToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := p.signIDToken(claims)
	require.NoError(t, err)
	return signed
}

func (p *FakeProvider) signIDToken(claims jwt.MapClaims) (string, error) {
	now := time.Now()
	base := jwt.MapClaims{
		"iss": p.Issuer(),
		"aud": FakeClientID,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
	for k, v := range claims {
		base[k] = v
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, base).SignedString(p.key)
}

func (p *FakeProvider) discovery(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"issuer":                                p.Issuer(),
		"authorization_endpoint":                p.Issuer() + "/authorize",
		"token_endpoint":                        p.Issuer() + "/token",
		"jwks_uri":                              p.Issuer() + "/jwks",
		"id_token_signing_alg_values_supported": []string{"RS256"},
	})
}

func (p *FakeProvider) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}

	p.mu.Lock()
	failure := p.nextError
	p.nextError = nil
	p.mu.Unlock()
	if failure != nil {
		body := map[string]string{}
		if failure.Code != "" {
			body["error"] = failure.Code
		}
		if failure.Description != "" {
			body["error_description"] = failure.Description
		}
		writeJSON(w, failure.Status, body)
		return
	}

	switch r.PostForm.Get("grant_type") {
	case "authorization_code":
		p.ExchangeCalls.Add(1)
		p.exchangeCode(w, r.PostForm.Get("code"))
	case "refresh_token":
		p.RefreshCalls.Add(1)
		p.refresh(w, r.PostForm.Get("refresh_token"))
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
	}
}

func (p *FakeProvider) exchangeCode(w http.ResponseWriter, code string) {
	p.mu.Lock()
	grant, ok := p.grants[code]
	delete(p.grants, code)
	p.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant", "error_description": "unknown authorization code"})
		return
	}

	n := p.issued.Add(1)
	body := map[string]any{
		"access_token": fmt.Sprintf("access-%d", n),
		"token_type":   "Bearer",
		"expires_in":   3600,
	}
	if !grant.OmitRefreshToken {
		refreshToken := fmt.Sprintf("refresh-%d", n)
		p.AddRefreshToken(refreshToken)
		body["refresh_token"] = refreshToken
	}
	if !grant.OmitIDToken {
		claims := jwt.MapClaims{"sub": grant.Subject, "email": grant.Email}
		if grant.Nonce != "" {
			claims["nonce"] = grant.Nonce
		}
		idToken, err := p.signIDToken(claims)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "server_error"})
			return
		}
		body["id_token"] = idToken
	}
	writeJSON(w, http.StatusOK, body)
}

func (p *FakeProvider) refresh(w http.ResponseWriter, refreshToken string) {
	p.mu.Lock()
	known := p.refreshTokens[refreshToken]
	rotate := p.rotateRefresh
	p.mu.Unlock()
	if !known {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant", "error_description": "refresh token revoked"})
		return
	}

	n := p.issued.Add(1)
	body := map[string]any{
		"access_token": fmt.Sprintf("access-refreshed-%d", n),
		"token_type":   "Bearer",
		"expires_in":   3600,
	}
	if rotate {
		next := fmt.Sprintf("refresh-%d", n)
		p.AddRefreshToken(next)
		body["refresh_token"] = next
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
