package authrequests

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-account-api/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Store issues and redeems sign-in handshakes
type Store struct {
	repo        Repo
	ttl         time.Duration
	tokenLength int
}

// NewStore creates a Store over repo. Records older than ttl are treated as
// absent; tokenLength is the number of random bytes in the state and nonce.
func NewStore(repo Repo, ttl time.Duration, tokenLength int) *Store {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if tokenLength <= 0 {
		tokenLength = 32
	}
	return &Store{repo: repo, ttl: ttl, tokenLength: tokenLength}
}

// TTL is the lifetime of an unconsumed auth request
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Begin creates and persists a fresh auth request
func (s *Store) Begin(ctx context.Context, redirectPath string) (*AuthRequest, error) {
	state, err := generateRandomString(s.tokenLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate oauth state: %w", err)
	}
	nonce, err := generateRandomString(s.tokenLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate oidc nonce: %w", err)
	}

	req := &AuthRequest{
		ID:           uuid.New(),
		OAuthState:   state,
		OIDCNonce:    nonce,
		RedirectPath: SafeRedirectPath(redirectPath),
		CreatedAt:    NowTimeFunc().UTC(),
	}
	if err := s.repo.Insert(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to store auth request: %w", err)
	}
	return req, nil
}

// Consume redeems the auth request for state. A second call with the same
// state, or a call for an expired request, fails with ErrNotFound.
func (s *Store) Consume(ctx context.Context, state string) (*AuthRequest, error) {
	if state == "" {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "empty oauth state")
	}

	req, err := s.repo.Consume(ctx, state)
	if err != nil {
		return nil, err
	}
	if req.Expired(NowTimeFunc(), s.ttl) {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "auth request created at %s has expired", req.CreatedAt.Format(time.RFC3339))
	}
	return req, nil
}

// PurgeExpired removes auth requests that were never consumed
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteCreatedBefore(ctx, NowTimeFunc().Add(-s.ttl))
}

// SafeRedirectPath keeps only local absolute paths so the post-login redirect
// cannot be pointed at another host.
func SafeRedirectPath(path string) string {
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") || strings.Contains(path, `\`) {
		return ""
	}
	u, err := url.Parse(path)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return path
}

// generateRandomString creates a random base64url string from length bytes
func generateRandomString(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
