package bootstrap

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/gutp/discux/config"
	"github.com/gutp/discux/internal/adapters/contentapi"
	redisadapter "github.com/gutp/discux/internal/adapters/redis"
	"github.com/gutp/discux/internal/compose"
	"github.com/gutp/discux/internal/observability/metrics"
	"github.com/gutp/discux/internal/ports"
	"github.com/gutp/discux/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Sessions *service.SessionManager
	Login    *service.LoginFlow
	Pages    *service.PageService
	Content  *service.ContentService
	Metrics  ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	// Recorder is metrics.Noop when metrics are disabled.
	Recorder metrics.Recorder
	// Handler serves the scrape endpoint; nil when metrics are disabled.
	Handler http.Handler
	Config  config.ObservabilityMetricsConfig
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient
	Provider    ports.AuthProvider
	// ContentHTTP overrides the HTTP client used against the content API.
	ContentHTTP *http.Client
	Logger      *slog.Logger
}

// buildObservability registers the Prometheus collectors on a private registry.
func buildObservability(cfg config.ObservabilityMetricsConfig) ObservabilityContainer {
	if !cfg.IsEnabled() {
		return ObservabilityContainer{Recorder: metrics.Noop{}, Config: cfg}
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return ObservabilityContainer{
		Recorder: metrics.NewCollector(reg),
		Handler:  metrics.Handler(reg),
		Config:   cfg,
	}
}

// NewServices wires the content client, composer, session store and services.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps require a config")
	}
	if deps.RedisClient == nil {
		return ServiceContainer{}, errors.New("service deps require a redis client")
	}
	if deps.Provider == nil {
		return ServiceContainer{}, errors.New("service deps require an auth provider")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config
	obs := buildObservability(cfg.Observability.Metrics)

	client, err := contentapi.NewClient(contentapi.ClientOptions{
		BaseURL:    cfg.Content.BaseURL,
		Timeout:    cfg.Content.Timeout,
		HTTPClient: deps.ContentHTTP,
		Metrics:    obs.Recorder,
		Logger:     logger,
	})
	if err != nil {
		return ServiceContainer{}, err
	}

	sessions := service.NewSessionManager(service.SessionManagerOptions{
		Store:  redisadapter.NewKVStore(deps.RedisClient),
		AppID:  cfg.AppID,
		TTL:    cfg.Auth.SessionTTL,
		Logger: logger,
	})

	composer := compose.New(compose.Options{
		Client:      client,
		SlotTimeout: cfg.Content.SlotTimeout,
		Metrics:     obs.Recorder,
		Logger:      logger,
	})

	return ServiceContainer{
		Sessions: sessions,
		Login: service.NewLoginFlow(service.LoginFlowOptions{
			Provider:    deps.Provider,
			Content:     client,
			Sessions:    sessions,
			CallTimeout: cfg.Auth.OAuth.CallTimeout,
			Metrics:     obs.Recorder,
			Logger:      logger,
		}),
		Pages: service.NewPageService(service.PageServiceOptions{
			Composer: composer,
			Content:  client,
		}),
		Content: service.NewContentService(service.ContentServiceOptions{
			Content:    client,
			AppID:      cfg.AppID,
			Profession: cfg.Profession,
			Logger:     logger,
		}),
		Metrics: obs,
	}, nil
}
