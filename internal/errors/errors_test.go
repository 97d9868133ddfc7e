package errors_test

import (
	"fmt"
	"testing"

	apperrors "github.com/jrsteele09/go-account-api/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestOAuthFailure_Error(t *testing.T) {
	require.Equal(t, "oauth failure: invalid_grant: refresh token revoked",
		apperrors.NewOAuthFailure("invalid_grant", "refresh token revoked").Error())
	require.Equal(t, "oauth failure: unauthorized", apperrors.NewOAuthFailure("unauthorized", "").Error())
}

func TestIsOAuthFailure_Wrapped(t *testing.T) {
	err := apperrors.Wrapf(apperrors.NewOAuthFailure("invalid_grant", ""), "refresh %s", "token")
	require.True(t, apperrors.IsOAuthFailure(err))
	require.False(t, apperrors.IsOAuthFailure(fmt.Errorf("plain: %w", apperrors.ErrUpstreamUnavailable)))

	var failure *apperrors.OAuthFailure
	require.True(t, apperrors.As(err, &failure))
	require.Equal(t, "invalid_grant", failure.Code)
}

func TestWrapf_Nil(t *testing.T) {
	require.NoError(t, apperrors.Wrapf(nil, "context"))
	require.True(t, apperrors.Is(apperrors.Wrapf(apperrors.ErrNotFound, "get %d", 1), apperrors.ErrNotFound))
}
