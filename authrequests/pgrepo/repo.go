package pgrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrsteele09/go-account-api/authrequests"
	apperrors "github.com/jrsteele09/go-account-api/internal/errors"
	"github.com/jrsteele09/go-account-api/internal/postgres"
)

// Repo stores auth requests in the auth_requests table
type Repo struct {
	db *pgxpool.Pool
}

var _ authrequests.Repo = (*Repo)(nil)

// New creates a PostgreSQL-backed auth request repository
func New(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// Insert stores a new auth request
func (r *Repo) Insert(ctx context.Context, req *authrequests.AuthRequest) error {
	const op = "authrequests.pgrepo.Insert"

	query := `
		INSERT INTO auth_requests (id, oauth_state, oidc_nonce, redirect_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`

	var redirectPath *string
	if req.RedirectPath != "" {
		redirectPath = &req.RedirectPath
	}

	if _, err := r.db.Exec(ctx, query, req.ID, req.OAuthState, req.OIDCNonce, redirectPath, req.CreatedAt); err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, apperrors.ErrAlreadyExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Consume deletes the auth request for state and returns it. DELETE ...
// RETURNING makes the find and the delete a single statement, so concurrent
// callers with the same state cannot both succeed.
func (r *Repo) Consume(ctx context.Context, state string) (*authrequests.AuthRequest, error) {
	const op = "authrequests.pgrepo.Consume"

	query := `
		DELETE FROM auth_requests
		WHERE oauth_state = $1
		RETURNING id, oauth_state, oidc_nonce, redirect_path, created_at
	`

	var req authrequests.AuthRequest
	var redirectPath *string
	err := r.db.QueryRow(ctx, query, state).Scan(
		&req.ID,
		&req.OAuthState,
		&req.OIDCNonce,
		&redirectPath,
		&req.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if redirectPath != nil {
		req.RedirectPath = *redirectPath
	}
	return &req, nil
}

// DeleteCreatedBefore removes auth requests created before cutoff
func (r *Repo) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const op = "authrequests.pgrepo.DeleteCreatedBefore"

	tag, err := r.db.Exec(ctx, `DELETE FROM auth_requests WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return tag.RowsAffected(), nil
}
