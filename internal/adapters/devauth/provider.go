package devauth

// Package devauth provides a simple, config-driven AuthProvider for local development.

import (
	"context"
	"errors"
	"net/url"

	domainauth "github.com/gutp/discux/internal/domain/auth"
)

// ProviderName is stored as the oauth_source of users created in dev mode.
const ProviderName = "dev"

const devAccessToken = "dev-access-token"

// Config controls the dev auth provider behavior.
type Config struct {
	Login       string
	DisplayName string
	// CallbackPath is where AuthCodeURL sends the browser. Defaults to /auth/callback.
	CallbackPath string
}

// Provider implements ports.AuthProvider for local development.
// It short-circuits the OAuth flow by redirecting back to our own callback
// with the state it was given. Exchange and FetchProfile return the configured account.
type Provider struct {
	account      domainauth.ExternalAccount
	callbackPath string
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Login == "" {
		return nil, errors.New("dev auth: Login is required")
	}
	display := cfg.DisplayName
	if display == "" {
		display = cfg.Login
	}
	cb := cfg.CallbackPath
	if cb == "" {
		cb = "/auth/callback"
	}
	return &Provider{
		account: domainauth.ExternalAccount{
			Provider:      ProviderName,
			ExternalLogin: cfg.Login,
			DisplayName:   display,
		},
		callbackPath: cb,
	}, nil
}

// Name implements ports.AuthProvider.
func (p *Provider) Name() string { return ProviderName }

// AuthCodeURL returns the local callback URL carrying state.
func (p *Provider) AuthCodeURL(state string) string {
	q := url.Values{"code": {"dev"}, "state": {state}}
	return p.callbackPath + "?" + q.Encode()
}

// Exchange accepts any non-empty code.
func (p *Provider) Exchange(ctx context.Context, code string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if code == "" {
		return "", errors.New("authorization code is required")
	}
	return devAccessToken, nil
}

// FetchProfile returns the configured account for the token Exchange issued.
func (p *Provider) FetchProfile(ctx context.Context, accessToken string) (domainauth.ExternalAccount, error) {
	if err := ctx.Err(); err != nil {
		return domainauth.ExternalAccount{}, err
	}
	if accessToken != devAccessToken {
		return domainauth.ExternalAccount{}, errors.New("dev auth: unknown access token")
	}
	return p.account, nil
}
