package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/gutp/discux/internal/adapters/contentapi"
	domainauth "github.com/gutp/discux/internal/domain/auth"
	"github.com/gutp/discux/internal/domain/content"
	"github.com/gutp/discux/internal/observability/metrics"
	"github.com/gutp/discux/internal/ports"
)

// LoginState is a state of the OAuth login state machine.
type LoginState string

const (
	StateStart              LoginState = "START"
	StateCodeReceived       LoginState = "CODE_RECEIVED"
	StateTokenExchanged     LoginState = "TOKEN_EXCHANGED"
	StateProfileFetched     LoginState = "PROFILE_FETCHED"
	StateUserMatched        LoginState = "USER_MATCHED"
	StateUserCreated        LoginState = "USER_CREATED"
	StateSessionEstablished LoginState = "SESSION_ESTABLISHED"
	StateFailed             LoginState = "FAILED"
)

// FailureReason names the step a login failed at.
type FailureReason string

const (
	ReasonStateMismatch FailureReason = "state"
	ReasonMissingCode   FailureReason = "missing_code"
	ReasonTokenExchange FailureReason = "token_exchange"
	ReasonProfileFetch  FailureReason = "profile_fetch"
	ReasonUserLookup    FailureReason = "user_lookup"
	ReasonUserCreate    FailureReason = "user_create"
	ReasonSessionCreate FailureReason = "session_create"
)

// Content API endpoints used by the login flow.
const (
	pathUserByAccount = "/v1/user/get_by_account"
	pathUserCreate    = "/v1/user/create"
)

// LoginError is the FAILED terminal state. From is the state the flow was in
// when the failing step ran.
type LoginError struct {
	From     LoginState
	Reason   FailureReason
	Provider string
	Account  string
	Err      error
}

func (e *LoginError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("login failed at %s (%s)", e.From, e.Reason)
	}
	return fmt.Sprintf("login failed at %s (%s): %v", e.From, e.Reason, e.Err)
}

func (e *LoginError) Unwrap() error { return e.Err }

// ErrorSignal maps each failure reason to the text shown on the error page.
func (e *LoginError) ErrorSignal() (string, string) {
	p := e.Provider
	switch e.Reason {
	case ReasonStateMismatch:
		return "Login with " + p, "The login request expired or was tampered with, please try again."
	case ReasonMissingCode:
		return "Login with " + p, "Authorization code is missing."
	case ReasonTokenExchange:
		return "Get access token from " + p, "Failed to request access token from " + p
	case ReasonProfileFetch:
		return "Get user info from " + p, "Failed to get response from " + p
	case ReasonUserLookup:
		return "Query user: " + e.Account, "Failed to look up the user account."
	case ReasonUserCreate:
		return "Register user: " + e.Account, "Failed to register the user account."
	case ReasonSessionCreate:
		return "Create session for: " + e.Account, "Failed to create a login session."
	default:
		return "Login with " + p, "Unknown"
	}
}

// NewStateMismatchError reports a callback whose state does not match the one issued.
func NewStateMismatchError(provider string) *LoginError {
	return &LoginError{From: StateStart, Reason: ReasonStateMismatch, Provider: provider}
}

// LoginResult is the SESSION_ESTABLISHED terminal state.
type LoginResult struct {
	Session domainauth.Session
	User    content.User
	Account domainauth.ExternalAccount
	Created bool
	// Trace lists every state visited, START first.
	Trace []LoginState
}

// LoginFlowOptions groups dependencies for LoginFlow.
type LoginFlowOptions struct {
	Provider    ports.AuthProvider
	Content     ports.ContentClient
	Sessions    *SessionManager
	CallTimeout time.Duration
	Metrics     metrics.Recorder
	Logger      *slog.Logger
}

// LoginFlow turns a provider authorization code into an established session.
// Every external call is attempted exactly once.
type LoginFlow struct {
	provider    ports.AuthProvider
	content     ports.ContentClient
	sessions    *SessionManager
	callTimeout time.Duration
	metrics     metrics.Recorder
	logger      *slog.Logger
}

// NewLoginFlow constructs a LoginFlow.
func NewLoginFlow(opts LoginFlowOptions) *LoginFlow {
	timeout := opts.CallTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &LoginFlow{
		provider:    opts.Provider,
		content:     opts.Content,
		sessions:    opts.Sessions,
		callTimeout: timeout,
		metrics:     metrics.OrNoop(opts.Metrics),
		logger:      logger.With("component", "login"),
	}
}

// ProviderName is the provider's display name.
func (f *LoginFlow) ProviderName() string { return f.provider.Name() }

// AuthCodeURL is where the browser is sent to authorize, carrying state.
func (f *LoginFlow) AuthCodeURL(state string) string { return f.provider.AuthCodeURL(state) }

// loginRun carries the data produced while stepping through the states.
type loginRun struct {
	state   LoginState
	trace   []LoginState
	code    string
	token   string
	account domainauth.ExternalAccount
	user    content.User
	session domainauth.Session
}

func (r *loginRun) to(next LoginState) {
	r.state = next
	r.trace = append(r.trace, next)
}

// Complete runs the state machine from START for code. It returns a
// *LoginError on failure; no session exists in that case.
func (f *LoginFlow) Complete(ctx context.Context, code string) (*LoginResult, error) {
	run := &loginRun{state: StateStart, trace: []LoginState{StateStart}, code: code}

	for run.state != StateSessionEstablished {
		if err := f.step(ctx, run); err != nil {
			var le *LoginError
			if !errors.As(err, &le) {
				le = &LoginError{From: run.state, Reason: FailureReason("unknown"), Err: err}
			}
			le.Provider = f.provider.Name()
			le.Account = run.account.ExternalLogin
			f.metrics.LoginOutcome(metrics.ResultError, string(le.Reason))
			f.logger.WarnContext(ctx, "login failed", "state", le.From, "reason", le.Reason, "account", le.Account, "error", le.Err)
			return nil, le
		}
	}

	outcome := "matched"
	if run.trace[len(run.trace)-2] == StateUserCreated {
		outcome = "created"
	}
	f.metrics.LoginOutcome(metrics.ResultSuccess, outcome)
	f.logger.InfoContext(ctx, "login succeeded", "account", run.account.ExternalLogin, "subject", run.user.ID, "outcome", outcome)

	return &LoginResult{
		Session: run.session,
		User:    run.user,
		Account: run.account,
		Created: outcome == "created",
		Trace:   run.trace,
	}, nil
}

func (f *LoginFlow) step(ctx context.Context, run *loginRun) error {
	fail := func(reason FailureReason, err error) error {
		return &LoginError{From: run.state, Reason: reason, Err: err}
	}

	switch run.state {
	case StateStart:
		if run.code == "" {
			return fail(ReasonMissingCode, nil)
		}
		run.to(StateCodeReceived)

	case StateCodeReceived:
		callCtx, cancel := context.WithTimeout(ctx, f.callTimeout)
		token, err := f.provider.Exchange(callCtx, run.code)
		cancel()
		if err != nil {
			return fail(ReasonTokenExchange, err)
		}
		if token == "" {
			return fail(ReasonTokenExchange, errors.New("provider returned an empty access token"))
		}
		run.token = token
		run.to(StateTokenExchanged)

	case StateTokenExchanged:
		callCtx, cancel := context.WithTimeout(ctx, f.callTimeout)
		account, err := f.provider.FetchProfile(callCtx, run.token)
		cancel()
		if err != nil {
			return fail(ReasonProfileFetch, err)
		}
		if account.ExternalLogin == "" {
			return fail(ReasonProfileFetch, errors.New("profile has no login"))
		}
		if account.Provider == "" {
			account.Provider = f.provider.Name()
		}
		run.account = account
		run.to(StateProfileFetched)

	case StateProfileFetched:
		user, found, err := contentapi.Lookup[content.User](ctx, f.content, pathUserByAccount,
			url.Values{"account": {run.account.ExternalLogin}})
		if err != nil {
			return fail(ReasonUserLookup, err)
		}
		if found {
			run.user = user
			run.to(StateUserMatched)
			return nil
		}
		created, ok, err := contentapi.Submit[content.User](ctx, f.content, pathUserCreate, newUserBody(run.account))
		if err != nil {
			return fail(ReasonUserCreate, err)
		}
		if !ok || created.ID == "" {
			return fail(ReasonUserCreate, errors.New("content api returned no user"))
		}
		run.user = created
		run.to(StateUserCreated)

	case StateUserMatched, StateUserCreated:
		sess, err := f.sessions.CreateSession(ctx, run.user.ID)
		if err != nil {
			return fail(ReasonSessionCreate, err)
		}
		run.session = sess
		run.to(StateSessionEstablished)

	default:
		return fmt.Errorf("unexpected login state %s", run.state)
	}
	return nil
}

type userCreateBody struct {
	Account     string `json:"account"`
	OAuthSource string `json:"oauth_source"`
	Nickname    string `json:"nickname"`
	Avatar      string `json:"avatar"`
	PubSettings string `json:"pub_settings"`
	Ext         string `json:"ext"`
}

func newUserBody(a domainauth.ExternalAccount) userCreateBody {
	nick := a.DisplayName
	if nick == "" {
		nick = a.ExternalLogin
	}
	return userCreateBody{
		Account:     a.ExternalLogin,
		OAuthSource: a.Provider,
		Nickname:    nick,
		Avatar:      a.AvatarURL,
	}
}
