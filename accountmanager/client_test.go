package accountmanager_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-account-api/accountmanager"
	"github.com/jrsteele09/go-account-api/downstream"
	apperrors "github.com/jrsteele09/go-account-api/internal/errors"
	"github.com/jrsteele09/go-account-api/oidcclient"
	"github.com/jrsteele09/go-account-api/sessions"
	"github.com/stretchr/testify/require"
)

type stubRefresher struct{ calls int }

func (s *stubRefresher) Refresh(context.Context, string) (*oidcclient.Tokens, error) {
	s.calls++
	return &oidcclient.Tokens{AccessToken: "new-access-token", RefreshToken: "refresh-token"}, nil
}

func newClient(t *testing.T, handler http.HandlerFunc) (*accountmanager.Client, *stubRefresher) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	refresher := &stubRefresher{}
	return accountmanager.NewClient(srv.URL, downstream.NewExecutor(srv.Client(), refresher)), refresher
}

var session = sessions.Session{AccessToken: "access-token", RefreshToken: "refresh-token"}

func TestEphemeralState(t *testing.T) {
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/ephemeral-state", r.URL.Path)
		_, _ = w.Write([]byte(`{"_ga":"abc","level_of_authentication":"level0"}`))
	})

	state, got, err := c.EphemeralState(context.Background(), session)
	require.NoError(t, err)
	require.JSONEq(t, `"abc"`, string(state["_ga"]))
	require.Equal(t, session, got)
}

func TestEphemeralState_EmptyBody(t *testing.T) {
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {})

	state, got, err := c.EphemeralState(context.Background(), session)
	require.NoError(t, err)
	require.NotNil(t, state)
	require.Empty(t, state)
	require.Equal(t, session, got)
}

func TestSubmitJWT(t *testing.T) {
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/jwt", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.JSONEq(t, `{"jwt":"signed"}`, string(body))
		_, _ = w.Write([]byte(`{"id":"foo"}`))
	})

	id, _, err := c.SubmitJWT(context.Background(), "signed", session)
	require.NoError(t, err)
	require.Equal(t, "foo", id)
}

func TestSubmitJWT_NoJSON(t *testing.T) {
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, _, err := c.SubmitJWT(context.Background(), "foo", session)
	require.True(t, apperrors.IsOAuthFailure(err))
}

func TestSubmitJWT_IDShapes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantID  string
		wantErr bool
	}{
		{"string", `{"id":"foo"}`, "foo", false},
		{"number", `{"id":42}`, "42", false},
		{"object", `{"id":{"value":"foo"}}`, "", true},
		{"list", `{"id":["foo"]}`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			id, _, err := c.SubmitJWT(context.Background(), "signed", session)
			if tt.wantErr {
				require.Error(t, err)
				require.False(t, apperrors.IsOAuthFailure(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, id)
		})
	}

	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":null}`))
	})
	_, _, err := c.SubmitJWT(context.Background(), "signed", session)
	require.True(t, apperrors.IsOAuthFailure(err))
}

func TestSubmitJWT_RefreshesAndRetries(t *testing.T) {
	var seen []string
	c, refresher := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		if r.Header.Get("Authorization") != "Bearer new-access-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":"foo"}`))
	})

	id, got, err := c.SubmitJWT(context.Background(), "", session)
	require.NoError(t, err)
	require.Equal(t, "foo", id)
	require.Equal(t, "new-access-token", got.AccessToken)
	require.Equal(t, []string{"Bearer access-token", "Bearer new-access-token"}, seen)
	require.Equal(t, 1, refresher.calls)
}

func TestSubmitJWT_Unauthorized(t *testing.T) {
	tests := []struct {
		name    string
		session sessions.Session
		calls   int
	}{
		{"no refresh token", sessions.Session{AccessToken: "access-token"}, 0},
		{"refreshed token also rejected", session, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, refresher := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			})

			_, _, err := c.SubmitJWT(context.Background(), "", tt.session)
			require.True(t, apperrors.IsOAuthFailure(err))
			require.Equal(t, tt.calls, refresher.calls)
		})
	}
}

func TestEmailSubscription(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   bool
	}{
		{"active", http.StatusOK, `{"subscription":{"topic_slug":"brexit","unsubscribed":false}}`, true},
		{"unsubscribed", http.StatusOK, `{"subscription":{"topic_slug":"brexit","unsubscribed":true}}`, false},
		{"none", http.StatusNotFound, ``, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			has, _, err := c.HasEmailSubscription(context.Background(), session)
			require.NoError(t, err)
			require.Equal(t, tt.want, has)
		})
	}
}

func TestSetEmailSubscription(t *testing.T) {
	var body string
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
	})

	_, err := c.SetEmailSubscription(context.Background(), "brexit", session)
	require.NoError(t, err)
	require.JSONEq(t, `{"topic_slug":"brexit"}`, body)

	c, _ = newClient(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) })
	_, err = c.SetEmailSubscription(context.Background(), "brexit", session)
	require.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
}
