// Package oidcclient talks to the identity provider: it builds the
// authorization redirect, exchanges authorization codes and refresh tokens,
// and verifies ID tokens.
package oidcclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-account-api/internal/config"
	apperrors "github.com/jrsteele09/go-account-api/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Options tune how the client reaches the provider
type Options struct {
	// HTTPClient is used for discovery, token and key requests. Defaults to a
	// client with a 10 second timeout.
	HTTPClient *http.Client
	// KeySet overrides the provider's published JWKS
	KeySet oidc.KeySet
	// Now overrides the clock used for ID token expiry checks
	Now func() time.Time
}

// Client is safe for concurrent use
type Client struct {
	oauth2     *oauth2.Config
	verifier   *oidc.IDTokenVerifier
	httpClient *http.Client
}

// New discovers the provider at the configured issuer and returns a client for it
func New(ctx context.Context, cfg config.OidcConfig, opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	provider, err := oidc.NewProvider(oidc.ClientContext(ctx, httpClient), cfg.GetOidcIssuer())
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider %q: %w", cfg.GetOidcIssuer(), err)
	}

	endpoint := provider.Endpoint()
	// Fix the auth style so a rejected exchange is never replayed with the other style
	endpoint.AuthStyle = oauth2.AuthStyleInParams

	verifierConfig := &oidc.Config{ClientID: cfg.GetOidcClientID(), Now: opts.Now}
	verifier := provider.Verifier(verifierConfig)
	if opts.KeySet != nil {
		verifier = oidc.NewVerifier(cfg.GetOidcIssuer(), opts.KeySet, verifierConfig)
	}

	return &Client{
		oauth2: &oauth2.Config{
			ClientID:     cfg.GetOidcClientID(),
			ClientSecret: cfg.GetOidcClientSecret(),
			Endpoint:     endpoint,
			RedirectURL:  cfg.GetOidcRedirectURL(),
			Scopes:       append([]string{oidc.ScopeOpenID}, cfg.GetOidcScopes()...),
		},
		verifier:   verifier,
		httpClient: httpClient,
	}, nil
}

// AuthCodeURL is the provider URL the user is sent to for sign-in. The nonce
// is omitted when empty.
func (c *Client) AuthCodeURL(state, nonce string) string {
	var opts []oauth2.AuthCodeOption
	if nonce != "" {
		opts = append(opts, oidc.Nonce(nonce))
	}
	return c.oauth2.AuthCodeURL(state, opts...)
}

// ExchangeCode redeems an authorization code. When nonce is not empty the
// response must carry an ID token whose nonce claim matches it.
func (c *Client) ExchangeCode(ctx context.Context, code, nonce string) (*Tokens, error) {
	token, err := c.oauth2.Exchange(c.clientContext(ctx), code)
	if err != nil {
		return nil, mapTokenError(err)
	}
	tokens := &Tokens{AccessToken: token.AccessToken, RefreshToken: token.RefreshToken, Expiry: token.Expiry}
	if nonce == "" {
		return tokens, nil
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, apperrors.NewOAuthFailure("invalid_id_token", "token response has no id_token")
	}
	idToken, err := c.verifier.Verify(c.clientContext(ctx), rawIDToken)
	if err != nil {
		return nil, apperrors.NewOAuthFailure("invalid_id_token", err.Error())
	}

	var claims Claims
	if err := idToken.Claims(&claims); err != nil {
		return nil, apperrors.NewOAuthFailure("invalid_id_token", err.Error())
	}
	if claims.Nonce != nonce {
		return nil, apperrors.NewOAuthFailure("invalid_nonce", "id_token nonce does not match the auth request")
	}
	tokens.claims = &claims
	return tokens, nil
}

// Refresh exchanges a refresh token for a new access token. The old refresh
// token is kept when the provider does not rotate it.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	if refreshToken == "" {
		return nil, apperrors.NewOAuthFailure("invalid_grant", "no refresh token")
	}

	token, err := c.oauth2.TokenSource(c.clientContext(ctx), &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, mapTokenError(err)
	}
	log.Debug().Time("expiry", token.Expiry).Msg("refreshed access token")

	tokens := &Tokens{AccessToken: token.AccessToken, RefreshToken: token.RefreshToken, Expiry: token.Expiry}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = refreshToken
	}
	return tokens, nil
}

func (c *Client) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// mapTokenError reduces token endpoint failures to the error taxonomy:
// provider rejections become OAuthFailure, transport problems become
// ErrUpstreamUnavailable.
func mapTokenError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		code := retrieveErr.ErrorCode
		if code == "" && retrieveErr.Response != nil {
			code = fmt.Sprintf("http_%d", retrieveErr.Response.StatusCode)
		}
		return apperrors.NewOAuthFailure(code, retrieveErr.ErrorDescription)
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrapf(apperrors.ErrUpstreamUnavailable, "token endpoint: %v", err)
	}

	// A 2xx response the oauth2 package could not use, e.g. no access_token
	return apperrors.NewOAuthFailure("invalid_token_response", err.Error())
}
