package authrequests_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-account-api/authrequests"
	apperrors "github.com/jrsteele09/go-account-api/internal/errors"
	"github.com/stretchr/testify/require"
)

func setNow(t *testing.T, now time.Time) {
	t.Helper()
	original := authrequests.NowTimeFunc
	authrequests.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { authrequests.NowTimeFunc = original })
}

func TestBegin_GeneratesUniqueStateAndNonce(t *testing.T) {
	repo := authrequests.NewInMemoryRepo()
	store := authrequests.NewStore(repo, time.Minute, 32)

	first, err := store.Begin(context.Background(), "/transition-check/results")
	require.NoError(t, err)
	second, err := store.Begin(context.Background(), "")
	require.NoError(t, err)

	require.NotEmpty(t, first.OAuthState)
	require.NotEmpty(t, first.OIDCNonce)
	require.NotEqual(t, first.OAuthState, first.OIDCNonce)
	require.NotEqual(t, first.OAuthState, second.OAuthState)
	require.NotEqual(t, first.OIDCNonce, second.OIDCNonce)
	require.Len(t, first.OAuthState, 43) // 32 bytes, unpadded base64url
	require.Equal(t, "/transition-check/results", first.RedirectPath)
	require.Empty(t, second.RedirectPath)
	require.Equal(t, 2, repo.Len())
}

func TestConsume_SingleUse(t *testing.T) {
	store := authrequests.NewStore(authrequests.NewInMemoryRepo(), time.Minute, 32)

	req, err := store.Begin(context.Background(), "/account")
	require.NoError(t, err)

	got, err := store.Consume(context.Background(), req.OAuthState)
	require.NoError(t, err)
	require.Equal(t, req.OIDCNonce, got.OIDCNonce)
	require.Equal(t, "/account", got.RedirectPath)

	_, err = store.Consume(context.Background(), req.OAuthState)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestConsume_UnknownAndEmptyState(t *testing.T) {
	store := authrequests.NewStore(authrequests.NewInMemoryRepo(), time.Minute, 32)

	_, err := store.Consume(context.Background(), "never-issued")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = store.Consume(context.Background(), "")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestConsume_Expired(t *testing.T) {
	repo := authrequests.NewInMemoryRepo()
	store := authrequests.NewStore(repo, 10*time.Minute, 32)
	start := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	setNow(t, start)
	req, err := store.Begin(context.Background(), "")
	require.NoError(t, err)

	setNow(t, start.Add(11*time.Minute))
	_, err = store.Consume(context.Background(), req.OAuthState)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.Zero(t, repo.Len(), "expired request is still removed")
}

func TestConsume_ConcurrentCallersHaveOneWinner(t *testing.T) {
	store := authrequests.NewStore(authrequests.NewInMemoryRepo(), time.Minute, 32)
	req, err := store.Begin(context.Background(), "")
	require.NoError(t, err)

	var wins, losses atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Consume(context.Background(), req.OAuthState); err == nil {
				wins.Add(1)
			} else {
				losses.Add(1)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, wins.Load())
	require.EqualValues(t, 49, losses.Load())
}

func TestPurgeExpired(t *testing.T) {
	repo := authrequests.NewInMemoryRepo()
	store := authrequests.NewStore(repo, 10*time.Minute, 32)
	start := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	setNow(t, start)
	_, err := store.Begin(context.Background(), "")
	require.NoError(t, err)
	setNow(t, start.Add(8*time.Minute))
	fresh, err := store.Begin(context.Background(), "")
	require.NoError(t, err)

	setNow(t, start.Add(12*time.Minute))
	deleted, err := store.PurgeExpired(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	_, err = store.Consume(context.Background(), fresh.OAuthState)
	require.NoError(t, err)
}

func TestInMemoryRepo_DuplicateState(t *testing.T) {
	repo := authrequests.NewInMemoryRepo()
	req := &authrequests.AuthRequest{OAuthState: "state", OIDCNonce: "nonce", CreatedAt: time.Now()}
	require.NoError(t, repo.Insert(context.Background(), req))
	require.ErrorIs(t, repo.Insert(context.Background(), req), apperrors.ErrAlreadyExists)
}

func TestSafeRedirectPath(t *testing.T) {
	tests := map[string]string{
		"/account":                 "/account",
		"/transition-check?c[]=nl": "/transition-check?c[]=nl",
		"":                         "",
		"account":                  "",
		"//evil.example/path":      "",
		"https://evil.example/":    "",
		`/\evil.example`:           "",
		"javascript:alert(1)":      "",
	}
	for in, want := range tests {
		require.Equal(t, want, authrequests.SafeRedirectPath(in), in)
	}
}
