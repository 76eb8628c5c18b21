package httpx

import (
	"compress/gzip"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/google/uuid"
	"github.com/unrolled/secure"

	domainauth "github.com/gutp/discux/internal/domain/auth"
	apperrors "github.com/gutp/discux/internal/errors"
	"github.com/gutp/discux/internal/observability/metrics"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID returns a middleware that assigns every request an id. A
// well-formed incoming X-Request-ID is kept; anything else is replaced.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
		})
	}
}

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", RequestIDFromContext(r.Context())),
			)
		})
	}
}

// Instrument records request counts and latency.
func Instrument(rec metrics.Recorder) func(http.Handler) http.Handler {
	rec = metrics.OrNoop(rec)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			rec.HTTPRequest(r.Method, ww.status, time.Since(start))
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *respWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *respWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *respWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Recover returns a middleware that recovers from panics, logs them and
// reports them through the error page.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	redirector := ErrorRedirector{Logger: logger}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.ErrorContext(r.Context(), "panic",
						slog.Any("error", rec),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					err := fmt.Errorf("panic: %v", rec)
					redirector.Redirect(w, r, apperrors.Wrap(err, apperrors.ErrCodeUnknown, "Handle request: "+r.URL.Path, unknownReason))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SessionValidator resolves a session cookie into an identity.
type SessionValidator interface {
	CookieName() string
	ValidateSession(ctx context.Context, token string) domainauth.Identity
}

// Identity returns a middleware that attaches the caller's identity to every
// request. A missing, malformed or expired session yields Anonymous; the
// request always proceeds and routes decide what Anonymous may do.
func Identity(sessions SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := domainauth.Anonymous()
			if c, err := r.Cookie(sessions.CookieName()); err == nil && c.Value != "" {
				id = sessions.ValidateSession(r.Context(), c.Value)
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// SecureHeaders sets the default security headers for HTML responses.
func SecureHeaders(devMode bool) func(http.Handler) http.Handler {
	options := secure.Options{
		ContentTypeNosniff:    true,
		FrameDeny:             true,
		HostsProxyHeaders:     []string{"X-Forwarded-Host"},
		IsDevelopment:         devMode,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		STSIncludeSubdomains:  true,
		STSSeconds:            31536000,
		ContentSecurityPolicy: "default-src 'self'; img-src 'self' https: data:; style-src 'self' 'unsafe-inline'",
	}
	return secure.New(options).Handler
}

// CompressionConfig holds configuration for the compression middleware.
type CompressionConfig struct {
	Level   int // Compression level (1-9, 0 for the gzip default)
	MinSize int // Minimum response size to compress in bytes (default 1400)
}

// Compression returns a gzip middleware for rendered pages.
func Compression(cfg CompressionConfig) (func(http.Handler) http.Handler, error) {
	level := cfg.Level
	if level == 0 {
		level = gzip.DefaultCompression
	}
	minSize := cfg.MinSize
	if minSize <= 0 {
		minSize = gziphandler.DefaultMinSize
	}
	return gziphandler.GzipHandlerWithOpts(
		gziphandler.CompressionLevel(level),
		gziphandler.MinSize(minSize),
		gziphandler.ContentTypes([]string{"text/html", "text/plain", "application/json"}),
	)
}

// Chain applies middlewares so the first one listed is the outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
