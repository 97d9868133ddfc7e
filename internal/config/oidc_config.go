package config

import "strings"

type OidcConfig interface {
	GetOidcIssuer() string
	GetOidcClientID() string
	GetOidcClientSecret() string
	GetOidcRedirectURL() string
	GetOidcScopes() []string
}

type Oidc struct {
	Issuer       string   `yaml:"issuer" env:"OIDC_ISSUER"`
	ClientID     string   `yaml:"client_id" env:"OIDC_CLIENT_ID"`
	ClientSecret string   `yaml:"client_secret" env:"OIDC_CLIENT_SECRET"`
	RedirectURL  string   `yaml:"redirect_url" env:"OIDC_REDIRECT_URL"`
	Scopes       []string `yaml:"scopes" env:"OIDC_SCOPES" env-separator:" "`
}

var _ OidcConfig = Oidc{}

func (o Oidc) GetOidcIssuer() string {
	return strings.TrimSuffix(o.Issuer, "/")
}

func (o Oidc) GetOidcClientID() string {
	return o.ClientID
}

func (o Oidc) GetOidcClientSecret() string {
	return o.ClientSecret
}

func (o Oidc) GetOidcRedirectURL() string {
	return o.RedirectURL
}

// GetOidcScopes returns the extra scopes requested alongside "openid"
func (o Oidc) GetOidcScopes() []string {
	scopes := make([]string, 0, len(o.Scopes))
	for _, s := range o.Scopes {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}
