package pgrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	apperrors "github.com/jrsteele09/go-account-api/internal/errors"
	"github.com/jrsteele09/go-account-api/internal/utils"
	"github.com/jrsteele09/go-account-api/users"
)

// Repo stores users in the users table
type Repo struct {
	db *pgxpool.Pool
}

var _ users.Repo = (*Repo)(nil)

// New creates a PostgreSQL-backed user repository
func New(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// GetByUID finds a user by subject identifier
func (r *Repo) GetByUID(ctx context.Context, uid string) (*users.User, error) {
	const op = "users.pgrepo.GetByUID"

	query := `
		SELECT
			id, uid, name, email, organisation_slug, organisation_content_id,
			app_name, permissions, remotely_signed_out, disabled, created_at, updated_at
		FROM users
		WHERE uid = $1
	`

	var u users.User
	var name, email, orgSlug, orgContentID, appName *string
	err := r.db.QueryRow(ctx, query, uid).Scan(
		&u.ID,
		&u.UID,
		&name,
		&email,
		&orgSlug,
		&orgContentID,
		&appName,
		&u.Permissions,
		&u.RemotelySignedOut,
		&u.Disabled,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u.Name = utils.Value(name)
	u.Email = utils.Value(email)
	u.OrganisationSlug = utils.Value(orgSlug)
	u.OrganisationContentID = utils.Value(orgContentID)
	u.AppName = utils.Value(appName)
	return &u, nil
}

// Upsert inserts the user or updates the existing row with the same uid
func (r *Repo) Upsert(ctx context.Context, u *users.User) error {
	const op = "users.pgrepo.Upsert"

	query := `
		INSERT INTO users (
			id, uid, name, email, organisation_slug, organisation_content_id,
			app_name, permissions, remotely_signed_out, disabled, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (uid) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			organisation_slug = EXCLUDED.organisation_slug,
			organisation_content_id = EXCLUDED.organisation_content_id,
			app_name = EXCLUDED.app_name,
			permissions = EXCLUDED.permissions,
			remotely_signed_out = EXCLUDED.remotely_signed_out,
			disabled = EXCLUDED.disabled,
			updated_at = EXCLUDED.updated_at
	`

	permissions := u.Permissions
	if permissions == nil {
		permissions = []string{}
	}

	_, err := r.db.Exec(ctx, query,
		u.ID,
		u.UID,
		utils.NilIfZero(u.Name),
		utils.NilIfZero(u.Email),
		utils.NilIfZero(u.OrganisationSlug),
		utils.NilIfZero(u.OrganisationContentID),
		utils.NilIfZero(u.AppName),
		permissions,
		u.RemotelySignedOut,
		u.Disabled,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
