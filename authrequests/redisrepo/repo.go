package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-account-api/authrequests"
	apperrors "github.com/jrsteele09/go-account-api/internal/errors"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "auth_request:"

// record is the JSON payload stored under each state key
type record struct {
	ID           uuid.UUID `json:"id"`
	OAuthState   string    `json:"oauth_state"`
	OIDCNonce    string    `json:"oidc_nonce"`
	RedirectPath string    `json:"redirect_path,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repo stores auth requests as Redis keys that expire on their own after ttl
type Repo struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ authrequests.Repo = (*Repo)(nil)

// New constructs a Redis-backed auth request repository
func New(client redis.UniversalClient, ttl time.Duration) *Repo {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Repo{client: client, ttl: ttl}
}

func key(state string) string {
	return keyPrefix + state
}

// Insert stores the auth request unless its state is already taken
func (r *Repo) Insert(ctx context.Context, req *authrequests.AuthRequest) error {
	payload, err := json.Marshal(record{
		ID:           req.ID,
		OAuthState:   req.OAuthState,
		OIDCNonce:    req.OIDCNonce,
		RedirectPath: req.RedirectPath,
		CreatedAt:    req.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal auth request: %w", err)
	}

	stored, err := r.client.SetNX(ctx, key(req.OAuthState), payload, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("persist auth request: %w", err)
	}
	if !stored {
		return fmt.Errorf("persist auth request: %w", apperrors.ErrAlreadyExists)
	}
	return nil
}

// Consume uses GETDEL so the read and the delete happen as one command
func (r *Repo) Consume(ctx context.Context, state string) (*authrequests.AuthRequest, error) {
	payload, err := r.client.GetDel(ctx, key(state)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load auth request: %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load auth request: %w", err)
	}

	var rec record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("decode auth request: %w", err)
	}
	return &authrequests.AuthRequest{
		ID:           rec.ID,
		OAuthState:   rec.OAuthState,
		OIDCNonce:    rec.OIDCNonce,
		RedirectPath: rec.RedirectPath,
		CreatedAt:    rec.CreatedAt,
	}, nil
}

// DeleteCreatedBefore is a no-op: Redis expires the keys itself
func (r *Repo) DeleteCreatedBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}
