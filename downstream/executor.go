// Package downstream performs authenticated calls to services that accept the
// user's access token, refreshing the token and retrying once when a call is
// rejected with 401.
package downstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	apperrors "github.com/jrsteele09/go-account-api/internal/errors"
	"github.com/jrsteele09/go-account-api/oidcclient"
	"github.com/jrsteele09/go-account-api/sessions"
	"github.com/rs/zerolog/log"
)

const maxResponseBytes = 4 << 20

// Refresher exchanges a refresh token for new tokens
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oidcclient.Tokens, error)
}

// Request describes one downstream call. Body, when set, is sent as JSON.
type Request struct {
	Method string
	URL    string
	Body   []byte
}

// Result is a downstream response. Body is the response decoded as a JSON
// object; it is empty, never nil, when the body was empty or not an object.
type Result struct {
	StatusCode int
	Body       map[string]json.RawMessage
	Raw        []byte
}

// IsSuccess reports a 2xx status
func (r *Result) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Unauthorized reports a 401 that survived the refresh cycle
func (r *Result) Unauthorized() bool {
	return r.StatusCode == http.StatusUnauthorized
}

// Err maps a non-2xx result to an error. A 401 here has already been through
// the refresh cycle, so it is an OAuthFailure.
func (r *Result) Err(operation string) error {
	switch {
	case r.IsSuccess():
		return nil
	case r.Unauthorized():
		return apperrors.NewOAuthFailure("unauthorized", operation+": access token rejected")
	default:
		return apperrors.Wrapf(apperrors.ErrUpstreamUnavailable, "%s: status %d", operation, r.StatusCode)
	}
}

// Executor sends Bearer-authenticated requests
type Executor struct {
	httpClient *http.Client
	refresher  Refresher
}

// NewExecutor creates an Executor. A nil httpClient uses http.DefaultClient.
func NewExecutor(httpClient *http.Client, refresher Refresher) *Executor {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Executor{httpClient: httpClient, refresher: refresher}
}

// Execute runs a single call in its own scope and returns its result along
// with the session, which carries new tokens if a refresh happened.
func (e *Executor) Execute(ctx context.Context, req Request, session sessions.Session) (*Result, sessions.Session, error) {
	scope := e.NewScope(session)
	res, err := scope.Do(ctx, req)
	return res, scope.Session(), err
}

// NewScope starts a request scope. Calls made through one scope share the
// session, so a refresh triggered by one of them is seen by all.
func (e *Executor) NewScope(session sessions.Session) *Scope {
	return &Scope{exec: e, session: session}
}

// Scope is the token state for one inbound request. It is safe for concurrent use.
type Scope struct {
	exec *Executor

	mu         sync.Mutex
	session    sessions.Session
	generation int // Number of successful refreshes; at most one
	refreshErr error
}

// Session returns the current session
func (s *Scope) Session() sessions.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Refreshed reports whether the tokens changed during the scope
func (s *Scope) Refreshed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation > 0
}

// Do performs req. On 401 it refreshes the tokens (once per scope) and retries
// once; the retried result is returned whatever its status. A 401 with no
// refresh token, or a failed refresh, is an OAuthFailure.
func (s *Scope) Do(ctx context.Context, req Request) (*Result, error) {
	s.mu.Lock()
	accessToken, seen := s.session.AccessToken, s.generation
	s.mu.Unlock()

	res, err := s.exec.send(ctx, req, accessToken)
	if err != nil || !res.Unauthorized() {
		return res, err
	}

	accessToken, retry, err := s.refresh(ctx, seen)
	if err != nil {
		return nil, err
	}
	if !retry {
		return res, nil
	}
	return s.exec.send(ctx, req, accessToken)
}

// refresh returns the access token to retry with. Concurrent callers that saw
// the same token wait for a single refresh and share its outcome.
func (s *Scope) refresh(ctx context.Context, seen int) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != seen {
		return s.session.AccessToken, true, nil
	}
	if s.generation > 0 {
		// The refreshed token was rejected too
		return "", false, nil
	}
	if s.refreshErr != nil {
		return "", false, s.refreshErr
	}
	if !s.session.CanRefresh() {
		s.refreshErr = apperrors.NewOAuthFailure("unauthorized", "access token rejected and no refresh token is available")
		return "", false, s.refreshErr
	}

	log.Debug().Msg("access token rejected, refreshing")
	tokens, err := s.exec.refresher.Refresh(ctx, s.session.RefreshToken)
	if err != nil {
		if !apperrors.IsOAuthFailure(err) && !apperrors.Is(err, apperrors.ErrUpstreamUnavailable) && ctx.Err() == nil {
			err = apperrors.NewOAuthFailure("refresh_failed", err.Error())
		}
		s.refreshErr = err
		return "", false, err
	}

	s.session.AccessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		s.session.RefreshToken = tokens.RefreshToken
	}
	s.generation++
	return s.session.AccessToken, true, nil
}

func (e *Executor) send(ctx context.Context, req Request, accessToken string) (*Result, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s %s: %w", req.Method, req.URL, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+accessToken)
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperrors.Wrapf(apperrors.ErrUpstreamUnavailable, "%s %s: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, apperrors.Wrapf(apperrors.ErrUpstreamUnavailable, "read %s %s: %v", req.Method, req.URL, err)
	}

	return &Result{StatusCode: resp.StatusCode, Body: parseLenient(raw), Raw: raw}, nil
}

// parseLenient decodes a JSON object, treating anything else as empty
func parseLenient(raw []byte) map[string]json.RawMessage {
	body := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return body
	}
	if err := json.Unmarshal(raw, &body); err != nil || body == nil {
		return map[string]json.RawMessage{}
	}
	return body
}
