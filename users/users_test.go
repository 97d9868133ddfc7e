package users_test

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-account-api/internal/errors"
	"github.com/jrsteele09/go-account-api/users"
	fakeuserrepo "github.com/jrsteele09/go-account-api/users/repofake"
	"github.com/stretchr/testify/require"
)

type failingRepo struct{ *fakeuserrepo.FakeUserRepo }

func (failingRepo) GetByUID(context.Context, string) (*users.User, error) {
	return nil, errors.New("connection reset")
}

func TestUsable(t *testing.T) {
	require.True(t, (&users.User{}).Usable())
	require.False(t, (&users.User{Disabled: true}).Usable())
	require.False(t, (&users.User{RemotelySignedOut: true}).Usable())
}

func TestHasPermission(t *testing.T) {
	u := &users.User{Permissions: []string{"signin", "internal_app"}}
	require.True(t, u.HasPermission("signin"))
	require.False(t, u.HasPermission("admin"))
}

func TestSyncIdentity_CreatesOnFirstSignIn(t *testing.T) {
	repo := fakeuserrepo.NewFakeUserRepo()
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	users.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { users.NowTimeFunc = time.Now })

	user, err := users.SyncIdentity(context.Background(), repo, users.Identity{UID: "uid-1", Email: "a@example.com", Name: "A"})
	require.NoError(t, err)
	require.Equal(t, "uid-1", user.UID)
	require.Equal(t, now, user.CreatedAt)

	stored, err := repo.GetByUID(context.Background(), "uid-1")
	require.NoError(t, err)
	require.Equal(t, "a@example.com", stored.Email)
	require.Equal(t, 1, repo.Len())
}

func TestSyncIdentity_UpdatesExisting(t *testing.T) {
	repo := fakeuserrepo.NewFakeUserRepo()
	require.NoError(t, repo.Upsert(context.Background(), &users.User{UID: "uid-1", Email: "old@example.com", Name: "Old", Permissions: []string{"signin"}}))

	_, err := users.SyncIdentity(context.Background(), repo, users.Identity{UID: "uid-1", Email: "new@example.com"})
	require.NoError(t, err)

	stored, err := repo.GetByUID(context.Background(), "uid-1")
	require.NoError(t, err)
	require.Equal(t, "new@example.com", stored.Email)
	require.Equal(t, "Old", stored.Name)
	require.Equal(t, []string{"signin"}, stored.Permissions)
	require.Equal(t, 1, repo.Len())
}

func TestSyncIdentity_RejectsUnusableUsers(t *testing.T) {
	tests := []struct {
		name string
		user users.User
	}{
		{"disabled", users.User{UID: "uid-1", Disabled: true}},
		{"remotely signed out", users.User{UID: "uid-1", RemotelySignedOut: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := fakeuserrepo.NewFakeUserRepo()
			require.NoError(t, repo.Upsert(context.Background(), &tt.user))

			_, err := users.SyncIdentity(context.Background(), repo, users.Identity{UID: "uid-1", Email: "x@example.com"})
			require.ErrorIs(t, err, apperrors.ErrUserDisabled)

			stored, err := repo.GetByUID(context.Background(), "uid-1")
			require.NoError(t, err)
			require.Empty(t, stored.Email)
		})
	}
}

func TestSyncIdentity_Errors(t *testing.T) {
	_, err := users.SyncIdentity(context.Background(), fakeuserrepo.NewFakeUserRepo(), users.Identity{})
	require.Error(t, err)

	_, err = users.SyncIdentity(context.Background(), failingRepo{fakeuserrepo.NewFakeUserRepo()}, users.Identity{UID: "uid-1"})
	require.ErrorContains(t, err, "connection reset")
}
