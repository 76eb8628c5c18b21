package oidc

// Package oidc provides the OpenID Connect provider, configured through discovery.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	domainauth "github.com/gutp/discux/internal/domain/auth"
	"golang.org/x/oauth2"
)

// DefaultName is the provider name used when ProviderConfig.Name is empty.
const DefaultName = "oidc"

// ErrMissingSubject is returned when userinfo carries no usable login.
var ErrMissingSubject = errors.New("userinfo carried no subject")

// Provider implements ports.AuthProvider using OIDC/OAuth2.
type Provider struct {
	name       string
	config     *oauth2.Config
	httpClient *http.Client

	// go-oidc provider and verifier
	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	Name         string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	DiscoveryURL string
	HTTPClient   *http.Client // Optional, defaults to a client with a 30s timeout
}

// DiscoveryDocument represents the OIDC discovery document.
type DiscoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
	JwksURI               string `json:"jwks_uri"`
}

// NewProvider creates a new OIDC provider. Discovery runs once, bounded by ctx.
func NewProvider(ctx context.Context, config ProviderConfig) (*Provider, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}
	if config.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	name := config.Name
	if name == "" {
		name = DefaultName
	}

	ctx = gooidc.ClientContext(ctx, httpClient)
	op, err := gooidc.NewProvider(ctx, issuerFromDiscoveryURL(config.DiscoveryURL))
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	return &Provider{
		name: name,
		config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       append([]string(nil), config.Scopes...),
			Endpoint:     op.Endpoint(),
		},
		httpClient:   httpClient,
		oidcProvider: op,
		verifier:     op.Verifier(&gooidc.Config{ClientID: config.ClientID}),
	}, nil
}

func issuerFromDiscoveryURL(u string) string {
	issuer := strings.TrimSuffix(u, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	return issuer
}

// Name implements ports.AuthProvider.
func (p *Provider) Name() string { return p.name }

// AuthCodeURL returns the discovered authorize URL carrying state.
func (p *Provider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Exchange trades code for an access token. An id_token in the response is
// verified against the provider keys before the access token is returned.
func (p *Provider) Exchange(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", errors.New("authorization code is required")
	}
	ctx = gooidc.ClientContext(ctx, p.httpClient)
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange code for token: %w", err)
	}
	if raw, ok := token.Extra("id_token").(string); ok && raw != "" {
		if _, err := p.verifier.Verify(ctx, raw); err != nil {
			return "", fmt.Errorf("verify id_token: %w", err)
		}
	}
	if token.AccessToken == "" {
		return "", errors.New("token response carried no access token")
	}
	return token.AccessToken, nil
}

// UserInfo is the subset of userinfo claims mapped onto an account.
// samaccountname covers AD/ADFS deployments.
type UserInfo struct {
	Subject           string `json:"sub"`
	PreferredUsername string `json:"preferred_username"`
	SamAccountName    string `json:"samaccountname"`
	Name              string `json:"name"`
	Picture           string `json:"picture"`
}

// FetchProfile reads the userinfo endpoint with accessToken.
func (p *Provider) FetchProfile(ctx context.Context, accessToken string) (domainauth.ExternalAccount, error) {
	ctx = gooidc.ClientContext(ctx, p.httpClient)
	ui, err := p.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
	if err != nil {
		return domainauth.ExternalAccount{}, fmt.Errorf("fetch user info: %w", err)
	}
	var claims UserInfo
	if err := ui.Claims(&claims); err != nil {
		return domainauth.ExternalAccount{}, fmt.Errorf("decode user info: %w", err)
	}
	return p.accountFromClaims(claims)
}

func (p *Provider) accountFromClaims(c UserInfo) (domainauth.ExternalAccount, error) {
	login := firstNonEmpty(c.PreferredUsername, c.SamAccountName, c.Subject)
	if login == "" {
		return domainauth.ExternalAccount{}, ErrMissingSubject
	}
	return domainauth.ExternalAccount{
		Provider:      p.name,
		ExternalLogin: login,
		DisplayName:   firstNonEmpty(c.Name, login),
		AvatarURL:     c.Picture,
	}, nil
}

// firstNonEmpty returns the first non-empty string from vals, or empty string if none.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
