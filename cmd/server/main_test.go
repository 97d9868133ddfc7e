package main

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-account-api/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestOpenStores_Memory(t *testing.T) {
	s, err := openStores(context.Background(), config.Store{Driver: config.StoreDriverMemory})
	require.NoError(t, err)
	defer s.Close()

	require.NotNil(t, s.authRequests)
	require.NotNil(t, s.users)
	require.NoError(t, s.Ping(context.Background()))
}

func TestOpenStores_BadRedisURL(t *testing.T) {
	_, err := openStores(context.Background(), config.Store{Driver: config.StoreDriverRedis, RedisURL: "not a url"})
	require.Error(t, err)
}

func TestSetupLogging(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	setupLogging(config.EnvVars{Env: "PROD", LogLevel: "DEBUG"})
	require.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	setupLogging(config.EnvVars{Env: "PROD", LogLevel: "nonsense"})
	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	require.True(t, names["serve"])
	require.True(t, names["migrate"])
	require.True(t, names["purge-auth-requests"])
}
