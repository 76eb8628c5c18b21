// Package contentapi is the HTTP client for the upstream content API.
//
// Every endpoint answers with a JSON array. The first element, if any, is
// "the" result of a lookup; an empty array means nothing matched. The client
// keeps that apart from transport, status and decode failures, which are
// returned as errors.
package contentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gutp/discux/internal/observability/metrics"
	"github.com/gutp/discux/internal/ports"
)

const maxResponseBytes = 4 << 20

var _ ports.ContentClient = (*Client)(nil)

// StatusError reports a non-2xx answer from the content API.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("content api %s %s: unexpected status %d", e.Method, e.Path, e.Code)
}

// DecodeError reports a response body that is not a JSON array.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("content api %s: decode response: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ClientOptions groups dependencies for the content API client.
type ClientOptions struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Metrics    metrics.Recorder
	Logger     *slog.Logger
}

// Client is a ports.ContentClient over HTTP/JSON.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewClient validates the base URL and builds a client.
func NewClient(opts ClientOptions) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse content api base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("content api base url must be http or https, got %q", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:    base,
		http:    hc,
		timeout: timeout,
		metrics: metrics.OrNoop(opts.Metrics),
		logger:  logger.With("component", "contentapi"),
	}, nil
}

// Get issues GET <base><path>?<params>.
func (c *Client) Get(ctx context.Context, path string, params url.Values) ([]json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, params, nil)
}

// Post issues POST <base><path> with body encoded as JSON.
func (c *Client) Post(ctx context.Context, path string, body any) ([]json.RawMessage, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s body: %w", path, err)
	}
	return c.do(ctx, http.MethodPost, path, nil, data)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body []byte) ([]json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	items, err := c.roundTrip(ctx, method, path, params, body)
	result := metrics.ResultSuccess
	switch {
	case err != nil:
		result = metrics.ResultError
		c.logger.WarnContext(ctx, "content api call failed", "method", method, "path", path, "error", err)
	case len(items) == 0:
		result = metrics.ResultEmpty
	}
	c.metrics.ContentCall(method, path, result, time.Since(start))
	return items, err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, params url.Values, body []byte) ([]json.RawMessage, error) {
	u := *c.base
	u.Path = c.base.Path + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &StatusError{Method: method, Path: path, Code: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return decodeArray(path, raw)
}

func decodeArray(path string, raw []byte) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return items, nil
}

// IsTransport reports whether err came from the network or the HTTP layer
// rather than from decoding a response.
func IsTransport(err error) bool {
	var de *DecodeError
	return err != nil && !errors.As(err, &de)
}
