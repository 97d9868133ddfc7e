package fakeuserrepo

import (
	"context"
	"sync"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-account-api/internal/errors"
	"github.com/jrsteele09/go-account-api/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

// FakeUserRepo keeps users in memory, keyed by UID
type FakeUserRepo struct {
	users map[string]users.User
	lock  sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users: make(map[string]users.User),
	}
}

func (ur *FakeUserRepo) Upsert(_ context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	stored := *user
	stored.Permissions = append([]string(nil), user.Permissions...)
	ur.users[user.UID] = stored
	return nil
}

func (ur *FakeUserRepo) GetByUID(_ context.Context, uid string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.users[uid]
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "user %s", uid)
	}
	user.Permissions = append([]string(nil), user.Permissions...)
	return &user, nil
}

// Len returns the number of stored users
func (ur *FakeUserRepo) Len() int {
	ur.lock.RLock()
	defer ur.lock.RUnlock()
	return len(ur.users)
}
