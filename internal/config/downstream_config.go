package config

import (
	"strings"
	"time"
)

type DownstreamConfig interface {
	GetAttributeServiceURL() string
	GetAccountManagerURL() string
	GetAttributeRegistryPath() string
	GetDownstreamTimeout() time.Duration
}

type Downstream struct {
	AttributeServiceURL string        `yaml:"attribute_service_url" env:"ATTRIBUTE_SERVICE_URL"`
	AccountManagerURL   string        `yaml:"account_manager_url" env:"ACCOUNT_MANAGER_URL"`
	RegistryPath        string        `yaml:"attribute_registry_path" env:"ATTRIBUTE_REGISTRY_PATH" env-default:"config/user_attributes.yml"`
	Timeout             time.Duration `yaml:"timeout" env:"DOWNSTREAM_TIMEOUT" env-default:"10s"`
}

var _ DownstreamConfig = Downstream{}

func (d Downstream) GetAttributeServiceURL() string {
	return strings.TrimSuffix(d.AttributeServiceURL, "/")
}

// GetAccountManagerURL falls back to the attribute service when the account
// manager is not deployed separately.
func (d Downstream) GetAccountManagerURL() string {
	if d.AccountManagerURL == "" {
		return d.GetAttributeServiceURL()
	}
	return strings.TrimSuffix(d.AccountManagerURL, "/")
}

func (d Downstream) GetAttributeRegistryPath() string {
	if d.RegistryPath == "" {
		return "config/user_attributes.yml"
	}
	return d.RegistryPath
}

func (d Downstream) GetDownstreamTimeout() time.Duration {
	if d.Timeout <= 0 {
		return 10 * time.Second
	}
	return d.Timeout
}
