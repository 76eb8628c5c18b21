package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gutp/discux/config"
	"github.com/gutp/discux/internal/adapters/devauth"
	"github.com/gutp/discux/internal/adapters/github"
	"github.com/gutp/discux/internal/adapters/oidc"
	"github.com/gutp/discux/internal/ports"
)

// AuthProviderConfig contains configuration for building the OAuth provider.
type AuthProviderConfig struct {
	Auth       config.AuthConfig
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// BuildAuthProvider returns the provider selected by the configured auth mode.
// OIDC discovery runs here, bounded by ctx.
//
//nolint:ireturn // the auth mode picks the concrete provider at runtime.
func BuildAuthProvider(ctx context.Context, cfg AuthProviderConfig) (ports.AuthProvider, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Auth.OAuth.CallTimeout}
	}
	oauth := cfg.Auth.OAuth

	switch cfg.Auth.Mode {
	case config.AuthModeGitHub:
		prov, err := github.NewProvider(github.ProviderConfig{
			ClientID:     oauth.ClientID,
			ClientSecret: oauth.ClientSecret,
			RedirectURL:  oauth.RedirectURL,
			Scopes:       oauth.Scopes(),
			AuthURL:      oauth.AuthURL,
			TokenURL:     oauth.TokenURL,
			ProfileURL:   oauth.ProfileURL,
			HTTPClient:   httpClient,
		})
		if err != nil {
			return nil, fmt.Errorf("github provider: %w", err)
		}
		return prov, nil

	case config.AuthModeOIDC:
		prov, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
			ClientID:     oauth.ClientID,
			ClientSecret: oauth.ClientSecret,
			RedirectURL:  oauth.RedirectURL,
			Scopes:       oauth.Scopes(),
			DiscoveryURL: oauth.DiscoveryURL,
			HTTPClient:   httpClient,
		})
		if err != nil {
			return nil, fmt.Errorf("oidc provider: %w", err)
		}
		return prov, nil

	case config.AuthModeMock:
		logger.WarnContext(ctx, "dev auth enabled; every login signs in as the configured account",
			"login", cfg.Auth.DevAuth.Login)
		prov, err := devauth.NewProvider(devauth.Config{
			Login:       cfg.Auth.DevAuth.Login,
			DisplayName: cfg.Auth.DevAuth.Name,
		})
		if err != nil {
			return nil, fmt.Errorf("dev auth provider: %w", err)
		}
		return prov, nil

	default:
		return nil, fmt.Errorf("unsupported auth mode: %q", cfg.Auth.Mode)
	}
}
