package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

const configPathEnvVar = "CONFIG_PATH"

type Config interface {
	EnvConfig
	OidcConfig
	DownstreamConfig
	StoreConfig
	CorsConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

// Settings is the loaded configuration. Each embedded section satisfies one of
// the narrow config interfaces so packages only depend on what they read.
type Settings struct {
	EnvVars    `yaml:",inline"`
	Oidc       `yaml:"oidc"`
	Downstream `yaml:"downstream"`
	Store      `yaml:"store"`
	Cors       `yaml:"cors"`
	Security   `yaml:"security"`
}

var _ Config = Settings{}

// New returns a configuration populated from the environment only.
func New() (Config, error) {
	return Load("")
}

// Load reads the configuration from a YAML file overlaid with environment
// variables. With an empty path, CONFIG_PATH is consulted; without either only
// the environment is read.
func Load(path string) (*Settings, error) {
	if path == "" {
		path = os.Getenv(configPathEnvVar)
	}

	var s Settings
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %q: %w", path, err)
		}
		// ReadConfig overlays the environment after parsing the file
		if err := cleanenv.ReadConfig(path, &s); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&s); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that the settings needed to talk to the provider and the
// downstream services are present.
func (s Settings) Validate() error {
	if s.Oidc.Issuer == "" {
		return fmt.Errorf("OIDC_ISSUER is required")
	}
	if s.Oidc.ClientID == "" {
		return fmt.Errorf("OIDC_CLIENT_ID is required")
	}
	if s.Downstream.AttributeServiceURL == "" {
		return fmt.Errorf("ATTRIBUTE_SERVICE_URL is required")
	}
	switch s.GetStoreDriver() {
	case StoreDriverMemory:
	case StoreDriverPostgres:
		if s.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case StoreDriverRedis:
		if s.Store.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis store")
		}
		if s.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the users table")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", s.Store.Driver)
	}
	return nil
}
