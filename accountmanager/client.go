// Package accountmanager calls the account manager's user-scoped endpoints:
// ephemeral state, JWT submission and the transition checker email
// subscription.
package accountmanager

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-account-api/downstream"
	apperrors "github.com/jrsteele09/go-account-api/internal/errors"
	"github.com/jrsteele09/go-account-api/sessions"
)

const (
	ephemeralStatePath    = "/api/v1/ephemeral-state"
	jwtPath               = "/api/v1/jwt"
	emailSubscriptionPath = "/api/v1/transition-checker/email-subscription"
)

// Client calls the account manager on the user's behalf through the executor
type Client struct {
	baseURL string
	exec    *downstream.Executor
}

// NewClient creates a Client for the account manager at baseURL
func NewClient(baseURL string, exec *downstream.Executor) *Client {
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), exec: exec}
}

// EphemeralState returns the short-lived state the account manager holds for
// the user. An empty or non-JSON body is an empty state.
func (c *Client) EphemeralState(ctx context.Context, session sessions.Session) (map[string]json.RawMessage, sessions.Session, error) {
	res, session, err := c.exec.Execute(ctx, downstream.Request{Method: http.MethodGet, URL: c.baseURL + ephemeralStatePath}, session)
	if err != nil {
		return nil, session, err
	}
	if err := res.Err("get ephemeral state"); err != nil {
		return nil, session, err
	}
	return res.Body, session, nil
}

// SubmitJWT hands a signed payload to the account manager and returns the id
// it was stored under. A response without an id is an OAuthFailure.
func (c *Client) SubmitJWT(ctx context.Context, jwt string, session sessions.Session) (string, sessions.Session, error) {
	body, err := json.Marshal(map[string]string{"jwt": jwt})
	if err != nil {
		return "", session, fmt.Errorf("failed to encode jwt: %w", err)
	}

	res, session, err := c.exec.Execute(ctx, downstream.Request{Method: http.MethodPost, URL: c.baseURL + jwtPath, Body: body}, session)
	if err != nil {
		return "", session, err
	}
	if err := res.Err("submit jwt"); err != nil {
		return "", session, err
	}

	var id string
	if raw, ok := res.Body["id"]; ok {
		if id, err = decodeID(raw); err != nil {
			return "", session, err
		}
	}
	if id == "" {
		return "", session, apperrors.NewOAuthFailure("invalid_response", "jwt submission returned no id")
	}
	return id, session, nil
}

// HasEmailSubscription reports whether the user has an active transition
// checker email subscription. A 404 means no subscription.
func (c *Client) HasEmailSubscription(ctx context.Context, session sessions.Session) (bool, sessions.Session, error) {
	res, session, err := c.exec.Execute(ctx, downstream.Request{Method: http.MethodGet, URL: c.baseURL + emailSubscriptionPath}, session)
	if err != nil {
		return false, session, err
	}
	if res.StatusCode == http.StatusNotFound {
		return false, session, nil
	}
	if err := res.Err("get email subscription"); err != nil {
		return false, session, err
	}

	var subscription struct {
		Topic        string `json:"topic_slug"`
		Unsubscribed bool   `json:"unsubscribed"`
	}
	if raw, ok := res.Body["subscription"]; ok {
		_ = json.Unmarshal(raw, &subscription)
	}
	return subscription.Topic != "" && !subscription.Unsubscribed, session, nil
}

// SetEmailSubscription subscribes the user to the topic slug
func (c *Client) SetEmailSubscription(ctx context.Context, slug string, session sessions.Session) (sessions.Session, error) {
	body, err := json.Marshal(map[string]string{"topic_slug": slug})
	if err != nil {
		return session, fmt.Errorf("failed to encode subscription: %w", err)
	}

	res, session, err := c.exec.Execute(ctx, downstream.Request{Method: http.MethodPost, URL: c.baseURL + emailSubscriptionPath, Body: body}, session)
	if err != nil {
		return session, err
	}
	return session, res.Err("set email subscription")
}

// decodeID reads a JSON string or number id. null reads as empty.
func decodeID(raw json.RawMessage) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var id any
	if err := dec.Decode(&id); err != nil {
		return "", fmt.Errorf("failed to decode jwt submission id: %w", err)
	}
	switch v := id.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	}
	return "", fmt.Errorf("jwt submission id: unexpected JSON %T", id)
}
