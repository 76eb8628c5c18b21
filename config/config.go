package config

import (
	"errors"
	"log/slog"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: OAuth provider and session configuration
//   - redis.go: session store connection
//   - content.go: upstream content API and page composition
//   - http.go: HTTP server configuration
//   - observability.go: log level and metrics
type AppConfig struct {
	// IsDev controls development mode behavior (relaxed security headers, insecure cookies).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// AppID namespaces the session cookie name and session store keys.
	AppID string `env:"APP_ID" envDefault:"discux"`

	// Profession is stamped on every post created through this front-end.
	Profession string `env:"APP_PROFESSION" envDefault:"forum"`

	// Authentication configuration
	Auth AuthConfig

	// Session store configuration
	Redis RedisConfig `envPrefix:"REDIS_"`

	// Upstream content API configuration
	Content ContentConfig

	// HTTP server configuration
	HTTP HTTPConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.AppID = strings.TrimSpace(c.AppID)
	if c.AppID == "" {
		c.AppID = defaultAppID
	}
	c.Profession = strings.TrimSpace(c.Profession)

	c.Auth.Sanitize()
	c.Redis.Sanitize()
	c.Content.Sanitize()
	c.HTTP.Sanitize()
	c.Observability.Sanitize()

	// Check NODE_ENV for dev mode
	c.detectDevMode()
}

// Validate reports configuration the server cannot start with.
func (c *AppConfig) Validate() error {
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if c.Content.BaseURL == "" {
		return errors.New("CONTENT_API_BASE_URL is required")
	}
	if _, err := c.Observability.Logging.SlogLevel(c.IsDev); err != nil {
		return err
	}
	return nil
}

// LogLevel is the level the process logs at. An unparsable LOG_LEVEL falls
// back to info; Validate reports it.
func (c *AppConfig) LogLevel() slog.Level {
	lvl, _ := c.Observability.Logging.SlogLevel(c.IsDev)
	return lvl
}

// SessionCookieName returns the cookie carrying the session token.
func (c *AppConfig) SessionCookieName() string {
	return c.AppID + "_sid"
}

const defaultAppID = "discux"

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
