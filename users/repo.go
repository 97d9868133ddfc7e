package users

import "context"

// Repo is the keyed store of user records. GetByUID returns ErrNotFound for
// unknown subjects.
type Repo interface {
	GetByUID(ctx context.Context, uid string) (*User, error)
	Upsert(ctx context.Context, user *User) error
}
