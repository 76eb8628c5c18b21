package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeGitHub logs users in with GitHub OAuth apps.
	AuthModeGitHub AuthMode = "github"
	// AuthModeOIDC uses a generic OpenID Connect provider found through discovery.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "github", "oidc", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: github, oidc, mock)", v)
	}
}

// OAuthConfig contains OAuth client configuration.
// The endpoint URLs are optional overrides; GitHub's public endpoints are used when empty.
type OAuthConfig struct {
	ClientID     string        `env:"CLIENT_ID"`
	ClientSecret string        `env:"CLIENT_SECRET"`
	RedirectURL  string        `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string        `env:"SCOPE"         envDefault:"read:user"`
	AuthURL      string        `env:"AUTH_URL"`
	TokenURL     string        `env:"TOKEN_URL"`
	ProfileURL   string        `env:"PROFILE_URL"`
	DiscoveryURL string        `env:"DISCOVERY_URL"`
	CallTimeout  time.Duration `env:"CALL_TIMEOUT"  envDefault:"10s"`
}

// Scopes splits Scope on whitespace or commas.
func (o OAuthConfig) Scopes() []string {
	return strings.FieldsFunc(o.Scope, func(r rune) bool {
		return r == ' ' || r == ','
	})
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	Login string `env:"LOGIN" envDefault:"dev-user"`
	Name  string `env:"NAME"  envDefault:"Dev User"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"github"`

	// OAuth configuration (used when Mode=github or Mode=oidc).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// SessionTTL is how long an issued session stays valid. Sixty days by default.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"1440h"`

	// CookieHashKey signs the short-lived OAuth state cookie.
	// A random key is generated at startup when empty, which invalidates
	// in-flight logins on restart.
	CookieHashKey string `env:"COOKIE_HASH_KEY"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.SessionTTL <= 0 {
		a.SessionTTL = 1440 * time.Hour
	}
	if a.OAuth.CallTimeout <= 0 {
		a.OAuth.CallTimeout = 10 * time.Second
	}
	a.OAuth.ClientID = strings.TrimSpace(a.OAuth.ClientID)
	a.OAuth.DiscoveryURL = strings.TrimSpace(a.OAuth.DiscoveryURL)
	a.CookieHashKey = strings.TrimSpace(a.CookieHashKey)
}

// Validate reports configuration that cannot produce a working login.
func (a *AuthConfig) Validate() error {
	switch a.Mode {
	case AuthModeGitHub:
		if a.OAuth.ClientID == "" || a.OAuth.ClientSecret == "" {
			return fmt.Errorf("OAUTH_CLIENT_ID and OAUTH_CLIENT_SECRET are required for AUTH_MODE=%s", a.Mode)
		}
	case AuthModeOIDC:
		if a.OAuth.ClientID == "" || a.OAuth.DiscoveryURL == "" {
			return fmt.Errorf("OAUTH_CLIENT_ID and OAUTH_DISCOVERY_URL are required for AUTH_MODE=%s", a.Mode)
		}
	case AuthModeMock:
	default:
		return fmt.Errorf("unsupported auth mode: %q", a.Mode)
	}
	return nil
}
