package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrsteele09/go-account-api/authrequests"
	authpgrepo "github.com/jrsteele09/go-account-api/authrequests/pgrepo"
	"github.com/jrsteele09/go-account-api/authrequests/redisrepo"
	"github.com/jrsteele09/go-account-api/internal/config"
	"github.com/jrsteele09/go-account-api/internal/postgres"
	"github.com/jrsteele09/go-account-api/users"
	userpgrepo "github.com/jrsteele09/go-account-api/users/pgrepo"
	fakeuserrepo "github.com/jrsteele09/go-account-api/users/repofake"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// storeSet holds the repositories chosen by STORE_DRIVER and the connections behind them
type storeSet struct {
	authRequests authrequests.Repo
	users        users.Repo
	pool         *pgxpool.Pool
	redis        *redis.Client
}

func openStores(ctx context.Context, cfg config.StoreConfig) (*storeSet, error) {
	switch cfg.GetStoreDriver() {
	case config.StoreDriverMemory:
		log.Warn().Msg("using in-memory stores; auth requests and users are lost on restart")
		return &storeSet{authRequests: authrequests.NewInMemoryRepo(), users: fakeuserrepo.NewFakeUserRepo()}, nil

	case config.StoreDriverPostgres:
		pool, err := postgres.Connect(ctx, cfg.GetDatabaseURL())
		if err != nil {
			return nil, err
		}
		return &storeSet{authRequests: authpgrepo.New(pool), users: userpgrepo.New(pool), pool: pool}, nil

	case config.StoreDriverRedis:
		opts, err := redis.ParseURL(cfg.GetRedisURL())
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to reach redis: %w", err)
		}
		pool, err := postgres.Connect(ctx, cfg.GetDatabaseURL())
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return &storeSet{
			authRequests: redisrepo.New(client, cfg.GetAuthRequestTTL()),
			users:        userpgrepo.New(pool),
			pool:         pool,
			redis:        client,
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.GetStoreDriver())
}

// Ping is the readiness check
func (s *storeSet) Ping(ctx context.Context) error {
	if s.pool != nil {
		if err := s.pool.Ping(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (s *storeSet) Close() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
}
