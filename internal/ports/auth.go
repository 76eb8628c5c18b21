package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"errors"
	"time"

	domainauth "github.com/gutp/discux/internal/domain/auth"
)

// ErrKeyNotFound is returned by KVStore.Get when the key is absent or expired.
var ErrKeyNotFound = errors.New("key not found")

// KVStore is the external key/value store sessions live in.
// Expiry is enforced by the store itself.
type KVStore interface {
	// Set writes value under key with the given time to live.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns the value for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Expire resets the time to live of an existing key and reports whether the key existed.
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// TTL returns the remaining time to live of key, or ErrKeyNotFound.
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// AuthProvider is an OAuth authorization-code provider.
type AuthProvider interface {
	// Name identifies the provider in user-facing messages and stored accounts, e.g. "github".
	Name() string

	// AuthCodeURL returns the provider authorize URL carrying state.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for an access token.
	Exchange(ctx context.Context, code string) (string, error)

	// FetchProfile returns the account behind an access token.
	FetchProfile(ctx context.Context, accessToken string) (domainauth.ExternalAccount, error)
}
