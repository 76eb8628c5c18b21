package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// Identity is the per-request view of who is calling. The zero value is Anonymous.
// It is created once by the identity middleware and is read-only afterwards.
type Identity struct {
	subjectID string
}

// Anonymous returns the identity of a caller without a valid session.
func Anonymous() Identity { return Identity{} }

// Authenticated returns the identity of a caller whose session resolved to subjectID.
// An empty subjectID yields Anonymous.
func Authenticated(subjectID string) Identity { return Identity{subjectID: subjectID} }

// IsAuthenticated reports whether the identity carries a subject.
func (i Identity) IsAuthenticated() bool { return i.subjectID != "" }

// SubjectID returns the subject and whether the identity is authenticated.
func (i Identity) SubjectID() (string, bool) { return i.subjectID, i.subjectID != "" }

// String renders the identity for logs.
func (i Identity) String() string {
	if !i.IsAuthenticated() {
		return "anonymous"
	}
	return "subject:" + i.subjectID
}

// Session is the server-side record mapping an opaque token to a subject.
// Sessions are never mutated in place; renewal issues a new token.
type Session struct {
	Token     string        `json:"token"`
	SubjectID string        `json:"subject_id"`
	TTL       time.Duration `json:"ttl"`
}

// MaxAgeSeconds is the cookie Max-Age matching the session TTL.
func (s Session) MaxAgeSeconds() int { return int(s.TTL / time.Second) }

// ExternalAccount is the profile returned by an OAuth provider. It is never
// persisted here; the content API owns the durable user record.
type ExternalAccount struct {
	Provider      string
	ExternalLogin string
	DisplayName   string
	AvatarURL     string
}
