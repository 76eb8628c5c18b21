package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/securecookie"

	domainauth "github.com/gutp/discux/internal/domain/auth"
	"github.com/gutp/discux/internal/observability/metrics"
)

// SessionManager is the session surface the router needs.
type SessionManager interface {
	CookieName() string
	ValidateSession(ctx context.Context, token string) domainauth.Identity
	DestroySession(ctx context.Context, token string) error
}

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Sessions   SessionManager
	Login      LoginFlow
	Pages      PageReader
	Content    ContentWriter
	Renderer   *TemplateRenderer
	StateCodec *securecookie.SecureCookie
	// Optional: per-client limiter on form posts and the login callback.
	RateLimiter *RateLimiter
	// Optional: gzip of rendered pages.
	Compression *CompressionConfig
	// Optional: request metrics and the scrape endpoint.
	Metrics        metrics.Recorder
	MetricsHandler http.Handler
	MetricsPath    string
	// Optional: readiness check behind /healthz.
	Health Pinger

	CookieDomain string
	IsDev        bool
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router with its middleware chain.
func NewRouter(services RouterServices) (http.Handler, error) {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	errs := ErrorRedirector{Logger: logger}
	decoder := NewFormDecoder()

	pages := &PageHandlers{Pages: services.Pages, Renderer: services.Renderer, Errors: errs}
	forms := &FormHandlers{Content: services.Content, Decoder: decoder, Errors: errs}
	auth := &AuthHandlers{
		Flow:         services.Login,
		Sessions:     services.Sessions,
		StateCodec:   services.StateCodec,
		Renderer:     services.Renderer,
		Errors:       errs,
		CookieDomain: services.CookieDomain,
		Logger:       logger,
	}
	limit := services.RateLimiter.Middleware(errs)

	mux := http.NewServeMux()
	registerPageRoutes(mux, pages)
	registerFormRoutes(mux, forms, limit)
	registerAuthRoutes(mux, auth, limit)

	mux.Handle("GET /error", ErrorPage(services.Renderer))
	mux.Handle("GET /healthz", healthHandler(services.Health, logger))
	if services.MetricsHandler != nil {
		path := services.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, services.MetricsHandler)
	}
	mux.HandleFunc("/", pages.NotFound)

	mws := []func(http.Handler) http.Handler{
		SecureHeaders(services.IsDev),
		RequestID(),
		Logging(logger),
		Instrument(services.Metrics),
		Recover(logger),
	}
	if services.Compression != nil {
		gz, err := Compression(*services.Compression)
		if err != nil {
			return nil, err
		}
		mws = append(mws, gz)
	}
	mws = append(mws, Identity(services.Sessions))

	return Chain(mux, mws...), nil
}

func registerPageRoutes(mux *http.ServeMux, h *PageHandlers) {
	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("GET /article", h.Article)
	mux.HandleFunc("GET /subspace", h.Subspace)
	mux.HandleFunc("GET /user/account", h.Account)
	mux.HandleFunc("GET /article/create", h.ArticleCreate)
	mux.HandleFunc("GET /article/edit", h.ArticleEdit)
	mux.HandleFunc("GET /article/delete", h.ArticleDelete)
	mux.HandleFunc("GET /subspace/create", h.SubspaceCreate)
	mux.HandleFunc("GET /subspace/delete", h.SubspaceDelete)
	mux.HandleFunc("GET /comment/create", h.CommentCreate)
	mux.HandleFunc("GET /comment/delete", h.CommentDelete)
}

func registerFormRoutes(mux *http.ServeMux, h *FormHandlers, limit func(http.Handler) http.Handler) {
	mux.Handle("POST /article/create", limit(http.HandlerFunc(h.CreateArticle)))
	mux.Handle("POST /article/edit", limit(http.HandlerFunc(h.EditArticle)))
	mux.Handle("POST /article/delete", limit(http.HandlerFunc(h.DeleteArticle)))
	mux.Handle("POST /subspace/create", limit(http.HandlerFunc(h.CreateSubspace)))
	mux.Handle("POST /subspace/delete", limit(http.HandlerFunc(h.DeleteSubspace)))
	mux.Handle("POST /comment/create", limit(http.HandlerFunc(h.CreateComment)))
	mux.Handle("POST /comment/delete", limit(http.HandlerFunc(h.DeleteComment)))
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, limit func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /user/login", h.LoginPage)
	mux.HandleFunc("GET "+RouteAuthBegin, h.Begin)
	mux.Handle("GET "+RouteCallback, limit(http.HandlerFunc(h.Callback)))
	mux.HandleFunc("POST /user/signout", h.Signout)
	mux.HandleFunc("GET /user/signout", h.Signout)
}
