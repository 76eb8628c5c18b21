package github

// Package github implements the OAuth authorization-code provider for GitHub OAuth apps.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	domainauth "github.com/gutp/discux/internal/domain/auth"
	"golang.org/x/oauth2"
	oauthgithub "golang.org/x/oauth2/github"
)

// ProviderName is stored as the oauth_source of users created through GitHub.
const ProviderName = "github"

// DefaultProfileURL is the GitHub REST endpoint describing the token owner.
const DefaultProfileURL = "https://api.github.com/user"

const userAgent = "discux"

var (
	// ErrMissingAccessToken is returned when the token endpoint answers without a token.
	ErrMissingAccessToken = errors.New("token response carried no access token")
	// ErrMissingLogin is returned when the profile has no login.
	ErrMissingLogin = errors.New("profile carried no login")
)

// ProfileStatusError is returned when the profile endpoint answers with a non-2xx status.
type ProfileStatusError struct {
	StatusCode int
	Body       string
}

func (e *ProfileStatusError) Error() string {
	return fmt.Sprintf("profile endpoint returned %d: %s", e.StatusCode, e.Body)
}

// ProviderConfig holds configuration for the GitHub provider.
// AuthURL, TokenURL and ProfileURL override GitHub's public endpoints when set.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	AuthURL      string
	TokenURL     string
	ProfileURL   string
	HTTPClient   *http.Client // Optional, defaults to a client with a 30s timeout
}

// Provider implements ports.AuthProvider against GitHub.
type Provider struct {
	config     *oauth2.Config
	profileURL string
	httpClient *http.Client
}

// NewProvider creates a GitHub provider.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if cfg.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	endpoint := oauthgithub.Endpoint
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}

	profileURL := cfg.ProfileURL
	if profileURL == "" {
		profileURL = DefaultProfileURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       append([]string(nil), cfg.Scopes...),
			Endpoint:     endpoint,
		},
		profileURL: profileURL,
		httpClient: httpClient,
	}, nil
}

// Name implements ports.AuthProvider.
func (p *Provider) Name() string { return ProviderName }

// AuthCodeURL returns the GitHub authorize URL carrying state.
func (p *Provider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange trades code for an access token. The caller bounds ctx.
func (p *Provider) Exchange(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", errors.New("authorization code is required")
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	tok, err := p.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange code for token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", ErrMissingAccessToken
	}
	return tok.AccessToken, nil
}

type profile struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// FetchProfile reads the account that owns accessToken.
func (p *Provider) FetchProfile(ctx context.Context, accessToken string) (domainauth.ExternalAccount, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.profileURL, nil)
	if err != nil {
		return domainauth.ExternalAccount{}, fmt.Errorf("build profile request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)

	// The oauth2 transport sets the bearer header and wraps p.httpClient.
	client := p.config.Client(context.WithValue(ctx, oauth2.HTTPClient, p.httpClient), &oauth2.Token{AccessToken: accessToken})
	client.Timeout = p.httpClient.Timeout
	resp, err := client.Do(req)
	if err != nil {
		return domainauth.ExternalAccount{}, fmt.Errorf("fetch profile: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domainauth.ExternalAccount{}, &ProfileStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var pr profile
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&pr); err != nil {
		return domainauth.ExternalAccount{}, fmt.Errorf("decode profile: %w", err)
	}
	if pr.Login == "" {
		return domainauth.ExternalAccount{}, ErrMissingLogin
	}

	display := pr.Name
	if display == "" {
		display = pr.Login
	}
	return domainauth.ExternalAccount{
		Provider:      ProviderName,
		ExternalLogin: pr.Login,
		DisplayName:   display,
		AvatarURL:     pr.AvatarURL,
	}, nil
}
