package authrequests

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuthRequest is the one-time handshake record created when a sign-in starts
// and consumed by the provider callback.
type AuthRequest struct {
	ID           uuid.UUID
	OAuthState   string // CSRF defence, echoed back by the provider
	OIDCNonce    string // Bound into the ID token to defeat replay
	RedirectPath string // Optional local path to return to after sign-in
	CreatedAt    time.Time
}

// Expired reports whether the request is older than ttl at now
func (r *AuthRequest) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(r.CreatedAt) > ttl
}

// Repo persists auth requests. Consume must find and delete the record in one
// atomic step so that two concurrent callbacks with the same state yield
// exactly one winner.
type Repo interface {
	Insert(ctx context.Context, req *AuthRequest) error
	Consume(ctx context.Context, state string) (*AuthRequest, error)
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
