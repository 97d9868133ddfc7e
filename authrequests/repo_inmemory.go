package authrequests

import (
	"context"
	"errors"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-account-api/internal/errors"
)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu       sync.Mutex
	requests map[string]AuthRequest
}

var _ Repo = (*InMemoryRepo)(nil)

// NewInMemoryRepo creates a new in-memory auth request repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		requests: make(map[string]AuthRequest),
	}
}

// Insert stores a new auth request. States are unique.
func (r *InMemoryRepo) Insert(_ context.Context, req *AuthRequest) error {
	if req == nil {
		return errors.New("auth request cannot be nil")
	}
	if req.OAuthState == "" {
		return errors.New("oauth state cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.requests[req.OAuthState]; exists {
		return apperrors.Wrapf(apperrors.ErrAlreadyExists, "oauth state")
	}
	// Store a copy to prevent external modifications
	r.requests[req.OAuthState] = *req
	return nil
}

// Consume removes and returns the auth request for state under a single lock
func (r *InMemoryRepo) Consume(_ context.Context, state string) (*AuthRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, exists := r.requests[state]
	if !exists {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "auth request")
	}
	delete(r.requests, state)
	return &req, nil
}

// DeleteCreatedBefore removes every auth request created before cutoff
func (r *InMemoryRepo) DeleteCreatedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for state, req := range r.requests {
		if req.CreatedAt.Before(cutoff) {
			delete(r.requests, state)
			deleted++
		}
	}
	return deleted, nil
}

// Len returns the number of stored auth requests
func (r *InMemoryRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}
