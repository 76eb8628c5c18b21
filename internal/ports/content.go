package ports

import (
	"context"
	"encoding/json"
	"net/url"
)

// ContentClient calls the upstream content API. Every endpoint answers with a
// JSON array; an empty array means nothing matched. Transport and decode
// failures are returned as errors and never collapsed into an empty result.
type ContentClient interface {
	Get(ctx context.Context, path string, params url.Values) ([]json.RawMessage, error)
	Post(ctx context.Context, path string, body any) ([]json.RawMessage, error)
}
