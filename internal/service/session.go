package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	domainauth "github.com/gutp/discux/internal/domain/auth"
	"github.com/gutp/discux/internal/ports"
)

// tokenBytes gives 256 bits of entropy per session token.
const tokenBytes = 32

// DefaultSessionTTL is sixty days.
const DefaultSessionTTL = 60 * 24 * time.Hour

// SessionManagerOptions groups dependencies for SessionManager.
type SessionManagerOptions struct {
	Store  ports.KVStore
	AppID  string
	TTL    time.Duration
	Logger *slog.Logger
	// Rand overrides the entropy source; crypto/rand when nil.
	Rand io.Reader
}

// SessionManager issues, validates and revokes sessions. Every validation is
// one store round trip; nothing is cached in process.
type SessionManager struct {
	store  ports.KVStore
	appID  string
	ttl    time.Duration
	logger *slog.Logger
	rand   io.Reader
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(opts SessionManagerOptions) *SessionManager {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := opts.Rand
	if r == nil {
		r = rand.Reader
	}
	return &SessionManager{
		store:  opts.Store,
		appID:  opts.AppID,
		ttl:    ttl,
		logger: logger.With("component", "sessions"),
		rand:   r,
	}
}

// CookieName is the session cookie name, "<appid>_sid".
func (m *SessionManager) CookieName() string { return m.appID + "_sid" }

// TTL is the lifetime of newly issued sessions.
func (m *SessionManager) TTL() time.Duration { return m.ttl }

// Key is the store key holding token's subject.
func (m *SessionManager) Key(token string) string { return m.appID + "_sid:" + token }

// CreateSession issues a new token for subjectID and stores it with the session TTL.
func (m *SessionManager) CreateSession(ctx context.Context, subjectID string) (domainauth.Session, error) {
	if subjectID == "" {
		return domainauth.Session{}, errors.New("subject id is required")
	}

	token, err := m.newToken()
	if err != nil {
		return domainauth.Session{}, err
	}
	if err := m.store.Set(ctx, m.Key(token), subjectID, m.ttl); err != nil {
		return domainauth.Session{}, fmt.Errorf("store session: %w", err)
	}

	return domainauth.Session{Token: token, SubjectID: subjectID, TTL: m.ttl}, nil
}

// ValidateSession resolves token to an identity. Missing, malformed or expired
// tokens yield Anonymous, and so do store failures, which are logged. Reading
// a session never extends it.
func (m *SessionManager) ValidateSession(ctx context.Context, token string) domainauth.Identity {
	if !wellFormedToken(token) {
		return domainauth.Anonymous()
	}

	subject, err := m.store.Get(ctx, m.Key(token))
	if err != nil {
		if !errors.Is(err, ports.ErrKeyNotFound) {
			m.logger.WarnContext(ctx, "session lookup failed", "token_prefix", tokenPrefix(token), "error", err)
		}
		return domainauth.Anonymous()
	}
	return domainauth.Authenticated(subject)
}

// DestroySession deletes token. It is idempotent; the error is only useful for logging.
func (m *SessionManager) DestroySession(ctx context.Context, token string) error {
	if !wellFormedToken(token) {
		return nil
	}
	if err := m.store.Delete(ctx, m.Key(token)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// SessionInfo describes a stored session for operators.
type SessionInfo struct {
	SubjectID string
	Remaining time.Duration
}

// Inspect returns the subject and remaining lifetime of token, or ports.ErrKeyNotFound.
func (m *SessionManager) Inspect(ctx context.Context, token string) (SessionInfo, error) {
	if !wellFormedToken(token) {
		return SessionInfo{}, ports.ErrKeyNotFound
	}
	subject, err := m.store.Get(ctx, m.Key(token))
	if err != nil {
		return SessionInfo{}, err
	}
	remaining, err := m.store.TTL(ctx, m.Key(token))
	if err != nil {
		return SessionInfo{}, err
	}
	return SessionInfo{SubjectID: subject, Remaining: remaining}, nil
}

// Shorten caps the remaining lifetime of token at ttl. It never extends a
// session: a ttl above the remaining lifetime is ignored.
func (m *SessionManager) Shorten(ctx context.Context, token string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, fmt.Errorf("ttl must be positive, got %s", ttl)
	}
	info, err := m.Inspect(ctx, token)
	if err != nil {
		if errors.Is(err, ports.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	if info.Remaining > 0 && ttl >= info.Remaining {
		return true, nil
	}
	return m.store.Expire(ctx, m.Key(token), ttl)
}

func (m *SessionManager) newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := io.ReadFull(m.rand, buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func wellFormedToken(token string) bool {
	if len(token) != 2*tokenBytes {
		return false
	}
	_, err := hex.DecodeString(token)
	return err == nil
}

func tokenPrefix(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8]
}
