package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, srv *httptest.Server) *Provider {
	t.Helper()
	p, err := NewProvider(ProviderConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		Scopes:       []string{"read:user"},
		AuthURL:      srv.URL + "/login/oauth/authorize",
		TokenURL:     srv.URL + "/login/oauth/access_token",
		ProfileURL:   srv.URL + "/user",
		HTTPClient:   srv.Client(),
	})
	require.NoError(t, err)
	return p
}

func TestNewProvider_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		config ProviderConfig
		errMsg string
	}{
		{"missing client ID", ProviderConfig{ClientSecret: "s", RedirectURL: "http://x"}, "client ID is required"},
		{"missing client secret", ProviderConfig{ClientID: "c", RedirectURL: "http://x"}, "client secret is required"},
		{"missing redirect URL", ProviderConfig{ClientID: "c", ClientSecret: "s"}, "redirect URL is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNewProvider_DefaultsToGitHub(t *testing.T) {
	p, err := NewProvider(ProviderConfig{ClientID: "c", ClientSecret: "s", RedirectURL: "http://x"})
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/login/oauth/authorize", p.config.Endpoint.AuthURL)
	assert.Equal(t, DefaultProfileURL, p.profileURL)
	assert.Equal(t, "github", p.Name())
}

func TestAuthCodeURL(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	p := newTestProvider(t, srv)

	u, err := url.Parse(p.AuthCodeURL("st-123"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "st-123", q.Get("state"))
	assert.Equal(t, "client", q.Get("client_id"))
	assert.Equal(t, "read:user", q.Get("scope"))
	assert.Equal(t, "http://localhost:8080/auth/callback", q.Get("redirect_uri"))
}

func TestExchangeAndFetchProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"bad_verification_code"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"gho_abc","token_type":"bearer"}`))
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer gho_abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"login":"octocat","name":"","avatar_url":"https://avatars/1"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	p := newTestProvider(t, srv)

	token, err := p.Exchange(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "gho_abc", token)

	acct, err := p.FetchProfile(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "github", acct.Provider)
	assert.Equal(t, "octocat", acct.ExternalLogin)
	assert.Equal(t, "octocat", acct.DisplayName)
	assert.Equal(t, "https://avatars/1", acct.AvatarURL)

	_, err = p.Exchange(context.Background(), "bad")
	require.Error(t, err)

	_, err = p.Exchange(context.Background(), "")
	require.Error(t, err)
}

func TestFetchProfile_Errors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer nologin":
			_, _ = w.Write([]byte(`{"name":"Anon"}`))
		case "Bearer garbage":
			_, _ = w.Write([]byte(`not json`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	p := newTestProvider(t, srv)

	_, err := p.FetchProfile(context.Background(), "expired")
	var se *ProfileStatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)

	_, err = p.FetchProfile(context.Background(), "nologin")
	require.ErrorIs(t, err, ErrMissingLogin)

	_, err = p.FetchProfile(context.Background(), "garbage")
	require.Error(t, err)
}

func TestFetchProfile_HonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	p := newTestProvider(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.FetchProfile(ctx, "tok")
	require.ErrorIs(t, err, context.Canceled)
}

type countingTransport struct {
	base  http.RoundTripper
	calls int
}

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	c.calls++
	return c.base.RoundTrip(r)
}

func TestFetchProfile_UsesConfiguredClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gho_xyz", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"login":"octocat","name":"Mona"}`))
	}))
	defer srv.Close()

	transport := &countingTransport{base: srv.Client().Transport}
	p, err := NewProvider(ProviderConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		ProfileURL:   srv.URL + "/user",
		HTTPClient:   &http.Client{Transport: transport},
	})
	require.NoError(t, err)

	acct, err := p.FetchProfile(context.Background(), "gho_xyz")
	require.NoError(t, err)
	assert.Equal(t, "Mona", acct.DisplayName)
	assert.Equal(t, 1, transport.calls)
}
