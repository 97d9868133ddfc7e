package users

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-account-api/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

type User struct {
	ID                    uuid.UUID `json:"id"`                                // Internal identifier
	UID                   string    `json:"uid"`                               // Subject identifier issued by the identity provider
	Name                  string    `json:"name,omitempty"`                    // Display name
	Email                 string    `json:"email,omitempty"`                   // Email address from the ID token
	OrganisationSlug      string    `json:"organisation_slug,omitempty"`       // Owning organisation
	OrganisationContentID string    `json:"organisation_content_id,omitempty"` // Owning organisation content ID
	AppName               string    `json:"app_name,omitempty"`                // Application the record was created through
	Permissions           []string  `json:"permissions,omitempty"`             // Granted permissions
	RemotelySignedOut     bool      `json:"remotely_signed_out,omitempty"`     // Signed out by the provider; existing sessions are void
	Disabled              bool      `json:"disabled,omitempty"`                // Disabled by an administrator
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// Usable is the gate applied to otherwise valid sessions: disabled or
// remotely signed out users are refused.
func (u *User) Usable() bool {
	return !u.Disabled && !u.RemotelySignedOut
}

// HasPermission checks whether the user holds permission
func (u *User) HasPermission(permission string) bool {
	return slices.Contains(u.Permissions, permission)
}

// Identity is the subset of ID token claims recorded against a user
type Identity struct {
	UID   string
	Email string
	Name  string
}

// SyncIdentity records a signed-in identity. A new user is created on first
// sign-in; an existing one has its email and name refreshed. Users that fail
// the Usable gate are rejected with ErrUserDisabled and left untouched.
func SyncIdentity(ctx context.Context, repo Repo, identity Identity) (*User, error) {
	if identity.UID == "" {
		return nil, fmt.Errorf("identity has no subject identifier")
	}

	now := NowTimeFunc().UTC()
	user, err := repo.GetByUID(ctx, identity.UID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		user = &User{
			ID:          uuid.New(),
			UID:         identity.UID,
			Permissions: []string{},
			CreatedAt:   now,
		}
	case err != nil:
		return nil, apperrors.Wrapf(err, "lookup user %s", identity.UID)
	case !user.Usable():
		return nil, apperrors.Wrapf(apperrors.ErrUserDisabled, "user %s", identity.UID)
	}

	if identity.Email != "" {
		user.Email = identity.Email
	}
	if identity.Name != "" {
		user.Name = identity.Name
	}
	user.UpdatedAt = now

	if err := repo.Upsert(ctx, user); err != nil {
		return nil, apperrors.Wrapf(err, "store user %s", identity.UID)
	}
	return user, nil
}
