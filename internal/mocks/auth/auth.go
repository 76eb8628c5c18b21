package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"net/url"
	"sync"
	"time"

	domainauth "github.com/gutp/discux/internal/domain/auth"
	"github.com/gutp/discux/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider = (*MockAuthProvider)(nil)
	_ ports.KVStore      = (*MemoryKVStore)(nil)
)

// MockAuthProvider simulates an OAuth provider for tests.
type MockAuthProvider struct {
	ExchangeFunc     func(ctx context.Context, code string) (string, error)
	FetchProfileFunc func(ctx context.Context, accessToken string) (domainauth.ExternalAccount, error)

	// Deterministic values for predictable testing
	ProviderName   string
	AuthURL        string
	DefaultAccount domainauth.ExternalAccount

	mu             sync.Mutex
	ExchangeCalls  int
	ProfileCalls   int
	LastAccessCode string
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		ProviderName: "mock",
		AuthURL:      "https://mock-idp/authorize",
		DefaultAccount: domainauth.ExternalAccount{
			Provider:      "mock",
			ExternalLogin: "mock-user",
			DisplayName:   "Mock User",
		},
	}
}

func (m *MockAuthProvider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

func (m *MockAuthProvider) AuthCodeURL(state string) string {
	base := m.AuthURL
	if base == "" {
		base = "https://mock-idp/authorize"
	}
	return base + "?state=" + url.QueryEscape(state)
}

func (m *MockAuthProvider) Exchange(ctx context.Context, code string) (string, error) {
	m.mu.Lock()
	m.ExchangeCalls++
	m.LastAccessCode = code
	m.mu.Unlock()
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, code)
	}
	return "access-" + code, nil
}

func (m *MockAuthProvider) FetchProfile(ctx context.Context, accessToken string) (domainauth.ExternalAccount, error) {
	m.mu.Lock()
	m.ProfileCalls++
	m.mu.Unlock()
	if m.FetchProfileFunc != nil {
		return m.FetchProfileFunc(ctx, accessToken)
	}
	acct := m.DefaultAccount
	if acct.ExternalLogin == "" {
		acct = domainauth.ExternalAccount{Provider: m.Name(), ExternalLogin: "mock-user", DisplayName: "Mock User"}
	}
	return acct, nil
}

type entry struct {
	value   string
	expires time.Time
}

// MemoryKVStore is an in-memory KV store for unit tests. It honours TTLs
// against an injectable clock and can be told to fail every call.
type MemoryKVStore struct {
	mu   sync.Mutex
	data map[string]entry

	// Err, when set, is returned from every operation.
	Err error
	// Now overrides the clock used for expiry.
	Now func() time.Time
}

// NewMemoryKVStore creates a new in-memory KV store.
func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{data: make(map[string]entry)}
}

func (m *MemoryKVStore) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *MemoryKVStore) live(key string) (entry, bool) {
	e, ok := m.data[key]
	if !ok {
		return entry{}, false
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.data, key)
		return entry{}, false
	}
	return e, true
}

func (m *MemoryKVStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	e := entry{value: value}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.data[key] = e
	return nil
}

func (m *MemoryKVStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	e, ok := m.live(key)
	if !ok {
		return "", ports.ErrKeyNotFound
	}
	return e.value, nil
}

func (m *MemoryKVStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.data, key)
	return nil
}

func (m *MemoryKVStore) Expire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	e, ok := m.live(key)
	if !ok {
		return false, nil
	}
	e.expires = m.now().Add(ttl)
	m.data[key] = e
	return true, nil
}

func (m *MemoryKVStore) TTL(_ context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	e, ok := m.live(key)
	if !ok {
		return 0, ports.ErrKeyNotFound
	}
	if e.expires.IsZero() {
		return -1, nil
	}
	return e.expires.Sub(m.now()), nil
}

// Len returns the number of live keys.
func (m *MemoryKVStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.data {
		if _, ok := m.live(k); ok {
			n++
		}
	}
	return n
}
