package httpx

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"

	domainauth "github.com/gutp/discux/internal/domain/auth"
	apperrors "github.com/gutp/discux/internal/errors"
	"github.com/gutp/discux/internal/service"
)

// LoginFlow is the OAuth login state machine as seen by the handlers.
type LoginFlow interface {
	ProviderName() string
	AuthCodeURL(state string) string
	Complete(ctx context.Context, code string) (*service.LoginResult, error)
}

// SessionTerminator ends sessions on sign-out.
type SessionTerminator interface {
	CookieName() string
	DestroySession(ctx context.Context, token string) error
}

// NewStateCodec returns the signer for the short-lived OAuth state cookie.
// An empty hashKey gets a random one, so in-flight logins do not survive a restart.
func NewStateCodec(hashKey []byte) *securecookie.SecureCookie {
	if len(hashKey) == 0 {
		hashKey = securecookie.GenerateRandomKey(64)
	}
	return securecookie.New(hashKey, nil).MaxAge(int(oauthStateMaxAge / time.Second))
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Flow         LoginFlow
	Sessions     SessionTerminator
	StateCodec   *securecookie.SecureCookie
	Renderer     *TemplateRenderer
	Errors       ErrorRedirector
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type loginPageData struct {
	Provider string
	LoginURL string
}

// LoginPage shows the sign-in link.
// GET /user/login.
func (h *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if IdentityFromContext(r.Context()).IsAuthenticated() {
		http.Redirect(w, r, RouteHome, http.StatusFound)
		return
	}
	h.Renderer.Render(w, r, PageLogin, NewPageData(r, "Sign in", loginPageData{
		Provider: h.Flow.ProviderName(),
		LoginURL: RouteAuthBegin,
	}))
}

// Begin stores a signed state cookie and redirects to the provider.
// GET /auth/login.
func (h *AuthHandlers) Begin(w http.ResponseWriter, r *http.Request) {
	raw := securecookie.GenerateRandomKey(32)
	if raw == nil {
		h.Errors.Redirect(w, r, apperrors.Wrap(errors.New("no randomness"), apperrors.ErrCodeUnknown,
			"Login with "+h.Flow.ProviderName(), unknownReason))
		return
	}
	state := hex.EncodeToString(raw)

	encoded, err := h.StateCodec.Encode(oauthStateCookie, state)
	if err != nil {
		h.Errors.Redirect(w, r, apperrors.Wrap(err, apperrors.ErrCodeUnknown,
			"Login with "+h.Flow.ProviderName(), unknownReason))
		return
	}
	h.setCookie(w, r, &http.Cookie{
		Name:   oauthStateCookie,
		Value:  encoded,
		MaxAge: int(oauthStateMaxAge / time.Second),
	})
	http.Redirect(w, r, h.Flow.AuthCodeURL(state), http.StatusFound)
}

// Callback checks state and runs the login flow for the returned code.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	expected, ok := h.readState(r)
	h.clearCookie(w, r, oauthStateCookie)

	got := q.Get("state")
	if !ok || got == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(got)) != 1 {
		h.Errors.Redirect(w, r, service.NewStateMismatchError(h.Flow.ProviderName()))
		return
	}

	result, err := h.Flow.Complete(r.Context(), q.Get("code"))
	if err != nil {
		h.Errors.Redirect(w, r, err)
		return
	}

	h.setSessionCookie(w, r, result.Session)
	http.Redirect(w, r, RouteHome, http.StatusFound)
}

// Signout destroys the caller's session.
// POST /user/signout (GET is kept for plain links).
func (h *AuthHandlers) Signout(w http.ResponseWriter, r *http.Request) {
	if !IdentityFromContext(r.Context()).IsAuthenticated() {
		h.Errors.Redirect(w, r, apperrors.AuthRequired("Sign out", "You are not signed in."))
		return
	}
	name := h.Sessions.CookieName()
	if c, err := r.Cookie(name); err == nil {
		if err := h.Sessions.DestroySession(r.Context(), c.Value); err != nil {
			h.logger().WarnContext(r.Context(), "sign out failed", "error", err)
		}
	}
	h.clearCookie(w, r, name)
	http.Redirect(w, r, RouteHome, http.StatusSeeOther)
}

func (h *AuthHandlers) readState(r *http.Request) (string, bool) {
	c, err := r.Cookie(oauthStateCookie)
	if err != nil {
		return "", false
	}
	var state string
	if err := h.StateCodec.Decode(oauthStateCookie, c.Value, &state); err != nil {
		h.logger().DebugContext(r.Context(), "state cookie rejected", "error", err)
		return "", false
	}
	return state, state != ""
}

// setSessionCookie writes the HttpOnly session cookie with Max-Age equal to the session TTL.
func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	h.setCookie(w, r, &http.Cookie{
		Name:   h.Sessions.CookieName(),
		Value:  s.Token,
		MaxAge: s.MaxAgeSeconds(),
	})
}

// clearCookie clears a cookie by setting it to expire immediately.
// It mirrors key attributes (Secure, Path, Domain, SameSite) used when setting cookies
// to maximize compatibility across browsers during deletion.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	h.setCookie(w, r, &http.Cookie{
		Name:    name,
		MaxAge:  -1,
		Expires: time.Unix(0, 0).UTC(),
	})
}

func (h *AuthHandlers) setCookie(w http.ResponseWriter, r *http.Request, c *http.Cookie) {
	c.Path = "/"
	c.Domain = h.CookieDomain
	c.HttpOnly = true
	c.Secure = isSecureRequest(r)
	c.SameSite = http.SameSiteLaxMode
	http.SetCookie(w, c)
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
