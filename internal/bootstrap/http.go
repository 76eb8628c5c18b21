package bootstrap

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/gutp/discux"
	"github.com/gutp/discux/config"
	httpx "github.com/gutp/discux/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	// Health backs /healthz, normally a Redis ping.
	Health httpx.Pinger
	// Templates overrides the template source; see templateFS.
	Templates fs.FS
	Logger    *slog.Logger
}

// HTTPServer is a running server plus the resources it owns.
type HTTPServer struct {
	Server  *http.Server
	limiter *httpx.RateLimiter
}

// templateFS loads templates from disk in dev mode for hot reloading and
// from the embedded copy otherwise.
func templateFS(isDev bool) (fs.FS, error) {
	if isDev {
		if st, err := os.Stat(httpx.TemplatePathFromRoot); err == nil && st.IsDir() {
			return os.DirFS(httpx.TemplatePathFromRoot), nil
		}
	}
	return discux.Templates()
}

// BuildHTTPHandler assembles the router and its middleware from the services.
// The returned limiter (possibly nil) must be stopped by the caller.
func BuildHTTPHandler(cfg *HTTPServerConfig) (http.Handler, *httpx.RateLimiter, error) {
	if cfg == nil || cfg.Config == nil {
		return nil, nil, errors.New("http server config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config

	templates := cfg.Templates
	if templates == nil {
		var err error
		if templates, err = templateFS(appCfg.IsDev); err != nil {
			return nil, nil, err
		}
	}
	renderer, err := httpx.NewTemplateRenderer(httpx.TemplateRendererConfig{
		TemplateFS: templates,
		Logger:     logger,
	})
	if err != nil {
		return nil, nil, err
	}

	var limiter *httpx.RateLimiter
	if appCfg.HTTP.RateLimitRPS > 0 {
		limiter = httpx.NewRateLimiter(httpx.RateLimiterConfig{
			Rate:  rate.Limit(appCfg.HTTP.RateLimitRPS),
			Burst: appCfg.HTTP.RateLimitBurst,
		}, logger)
	}

	var compression *httpx.CompressionConfig
	if appCfg.HTTP.CompressionEnabled {
		logger.Info("HTTP compression enabled", "level", appCfg.HTTP.CompressionLevel)
		compression = &httpx.CompressionConfig{Level: appCfg.HTTP.CompressionLevel}
	}

	svcs := cfg.Services
	handler, err := httpx.NewRouter(httpx.RouterServices{
		Sessions:       svcs.Sessions,
		Login:          svcs.Login,
		Pages:          svcs.Pages,
		Content:        svcs.Content,
		Renderer:       renderer,
		StateCodec:     httpx.NewStateCodec([]byte(appCfg.Auth.CookieHashKey)),
		RateLimiter:    limiter,
		Compression:    compression,
		Metrics:        svcs.Metrics.Recorder,
		MetricsHandler: svcs.Metrics.Handler,
		MetricsPath:    svcs.Metrics.Config.Path,
		Health:         cfg.Health,
		CookieDomain:   appCfg.HTTP.CookieDomain,
		IsDev:          appCfg.IsDev,
		Logger:         logger,
	})
	if err != nil {
		limiter.Stop()
		return nil, nil, err
	}
	return handler, limiter, nil
}

// StartHTTPServer builds the handler and starts serving in the background.
// Serve errors are delivered on errCh.
func StartHTTPServer(cfg *HTTPServerConfig, errCh chan<- error) (*HTTPServer, error) {
	handler, limiter, err := BuildHTTPHandler(cfg)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	addr := cfg.Config.HTTP.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	return &HTTPServer{Server: server, limiter: limiter}, nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *HTTPServer) Shutdown(ctx context.Context, logger *slog.Logger) error {
	if s == nil || s.Server == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("shutting down HTTP server")
	defer s.limiter.Stop()

	if err := s.Server.Shutdown(ctx); err != nil {
		return err
	}
	logger.Info("HTTP server stopped")
	return nil
}
