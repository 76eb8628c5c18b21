package contentapi

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/gutp/discux/internal/ports"
)

// DecodeList decodes every element of a content API array into T.
func DecodeList[T any](path string, raw []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(raw))
	for _, item := range raw {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			return nil, &DecodeError{Path: path, Err: err}
		}
		out = append(out, v)
	}
	return out, nil
}

// DecodeFirst decodes the first element into T. found is false for an empty array.
func DecodeFirst[T any](path string, raw []json.RawMessage) (v T, found bool, err error) {
	if len(raw) == 0 {
		return v, false, nil
	}
	if err := json.Unmarshal(raw[0], &v); err != nil {
		return v, false, &DecodeError{Path: path, Err: err}
	}
	return v, true, nil
}

// List fetches path and decodes all entities.
func List[T any](ctx context.Context, c ports.ContentClient, path string, params url.Values) ([]T, error) {
	raw, err := c.Get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	return DecodeList[T](path, raw)
}

// Lookup fetches path and returns the first entity. The three outcomes are
// found (v, true, nil), not found (zero, false, nil) and failure (zero, false, err).
func Lookup[T any](ctx context.Context, c ports.ContentClient, path string, params url.Values) (T, bool, error) {
	raw, err := c.Get(ctx, path, params)
	if err != nil {
		var zero T
		return zero, false, err
	}
	return DecodeFirst[T](path, raw)
}

// Submit posts body to path and returns the first entity of the answer.
func Submit[T any](ctx context.Context, c ports.ContentClient, path string, body any) (T, bool, error) {
	raw, err := c.Post(ctx, path, body)
	if err != nil {
		var zero T
		return zero, false, err
	}
	return DecodeFirst[T](path, raw)
}
