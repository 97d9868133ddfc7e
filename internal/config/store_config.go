package config

import "time"

const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
)

type StoreConfig interface {
	GetStoreDriver() string
	GetDatabaseURL() string
	GetRedisURL() string
	GetAuthRequestTTL() time.Duration
}

type Store struct {
	Driver         string        `yaml:"driver" env:"STORE_DRIVER" env-default:"memory"`
	DatabaseURL    string        `yaml:"database_url" env:"DATABASE_URL"`
	RedisURL       string        `yaml:"redis_url" env:"REDIS_URL"`
	AuthRequestTTL time.Duration `yaml:"auth_request_ttl" env:"AUTH_REQUEST_TTL" env-default:"15m"`
}

var _ StoreConfig = Store{}

func (s Store) GetStoreDriver() string {
	if s.Driver == "" {
		return StoreDriverMemory
	}
	return s.Driver
}

func (s Store) GetDatabaseURL() string {
	return s.DatabaseURL
}

func (s Store) GetRedisURL() string {
	return s.RedisURL
}

// GetAuthRequestTTL is how long an unconsumed sign-in handshake stays valid
func (s Store) GetAuthRequestTTL() time.Duration {
	if s.AuthRequestTTL <= 0 {
		return 15 * time.Minute
	}
	return s.AuthRequestTTL
}
