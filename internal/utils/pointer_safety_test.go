package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPointerHelpers(t *testing.T) {
	require.Equal(t, "", Value[string](nil))
	require.Equal(t, "x", Value(Ptr("x")))

	require.Nil(t, NilIfZero(""))
	require.Nil(t, NilIfZero(0))
	require.Equal(t, "org", *NilIfZero("org"))
}
