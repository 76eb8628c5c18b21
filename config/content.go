package config

import (
	"strings"
	"time"
)

// ContentConfig points the front-end at the upstream content API.
type ContentConfig struct {
	// BaseURL is the content API root; request paths such as /v1/post are appended to it.
	BaseURL string `env:"CONTENT_API_BASE_URL" envDefault:"http://127.0.0.1:3000"`

	// Timeout bounds every single content API call.
	Timeout time.Duration `env:"CONTENT_API_TIMEOUT" envDefault:"5s"`

	// SlotTimeout bounds each slot of a page composition. A REQUIRED slot that
	// times out fails the page; an OPTIONAL one falls back to its default.
	SlotTimeout time.Duration `env:"COMPOSE_SLOT_TIMEOUT" envDefault:"3s"`
}

// Sanitize applies guardrails to content API configuration values.
func (c *ContentConfig) Sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.SlotTimeout <= 0 {
		c.SlotTimeout = 3 * time.Second
	}
}
