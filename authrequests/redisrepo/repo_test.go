package redisrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-account-api/authrequests"
	"github.com/jrsteele09/go-account-api/authrequests/redisrepo"
	apperrors "github.com/jrsteele09/go-account-api/internal/errors"
	"github.com/jrsteele09/go-account-api/internal/testsupport"
	"github.com/stretchr/testify/require"
)

func TestIntegration_InsertAndConsume(t *testing.T) {
	client := testsupport.StartRedis(t)
	repo := redisrepo.New(client, time.Minute)
	ctx := context.Background()

	req := &authrequests.AuthRequest{
		ID:           uuid.New(),
		OAuthState:   "state-1",
		OIDCNonce:    "nonce-1",
		RedirectPath: "/account",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, repo.Insert(ctx, req))

	ttl, err := client.TTL(ctx, "auth_request:state-1").Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))

	got, err := repo.Consume(ctx, "state-1")
	require.NoError(t, err)
	require.Equal(t, req.ID, got.ID)
	require.Equal(t, "nonce-1", got.OIDCNonce)
	require.Equal(t, "/account", got.RedirectPath)

	_, err = repo.Consume(ctx, "state-1")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestIntegration_DuplicateState(t *testing.T) {
	repo := redisrepo.New(testsupport.StartRedis(t), time.Minute)
	ctx := context.Background()

	req := &authrequests.AuthRequest{ID: uuid.New(), OAuthState: "dup", OIDCNonce: "n", CreatedAt: time.Now()}
	require.NoError(t, repo.Insert(ctx, req))
	require.ErrorIs(t, repo.Insert(ctx, req), apperrors.ErrAlreadyExists)
}
