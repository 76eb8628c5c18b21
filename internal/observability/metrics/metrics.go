package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result constants for metric labels.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultEmpty   = "empty"
)

// Slot outcome labels.
const (
	SlotResolved  = "resolved"
	SlotDefaulted = "defaulted"
	SlotFailed    = "failed"
	SlotSkipped   = "skipped"
)

// Recorder receives the application's metric events. Implementations must be
// safe for concurrent use.
type Recorder interface {
	SlotOutcome(page, slot, outcome string)
	Composition(page, status string, d time.Duration)
	ContentCall(method, path, result string, d time.Duration)
	LoginOutcome(result, reason string)
	HTTPRequest(method string, status int, d time.Duration)
}

// Noop discards every event.
type Noop struct{}

func (Noop) SlotOutcome(string, string, string) {}
func (Noop) Composition(string, string, time.Duration) {}
func (Noop) ContentCall(string, string, string, time.Duration) {}
func (Noop) LoginOutcome(string, string) {}
func (Noop) HTTPRequest(string, int, time.Duration) {}

// OrNoop returns r, or Noop when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return Noop{}
	}
	return r
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	slots        *prometheus.CounterVec
	compositions *prometheus.HistogramVec
	content      *prometheus.HistogramVec
	logins       *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

var _ Recorder = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		slots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "discux_compose_slot_total",
			Help: "Page composition slot outcomes.",
		}, []string{"page", "slot", "outcome"}),
		compositions: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "discux_compose_duration_seconds",
			Help:    "Wall time of a page composition.",
			Buckets: prometheus.DefBuckets,
		}, []string{"page", "status"}),
		content: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "discux_content_request_duration_seconds",
			Help:    "Latency of content API calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "discux_login_total",
			Help: "OAuth login flow terminations.",
		}, []string{"result", "reason"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "discux_http_requests_total",
			Help: "HTTP responses by method and status code.",
		}, []string{"method", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "discux_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}

	reg.MustRegister(
		c.slots,
		c.compositions,
		c.content,
		c.logins,
		c.httpRequests,
		c.httpLatency,
	)

	return c
}

func (c *Collector) SlotOutcome(page, slot, outcome string) {
	c.slots.WithLabelValues(page, slot, outcome).Inc()
}

func (c *Collector) Composition(page, status string, d time.Duration) {
	c.compositions.WithLabelValues(page, status).Observe(d.Seconds())
}

// ContentCall records one upstream call. path should be the route template
// (e.g. /v1/post), never a URL carrying ids, to keep label cardinality bounded.
func (c *Collector) ContentCall(method, path, result string, d time.Duration) {
	c.content.WithLabelValues(method, path, result).Observe(d.Seconds())
}

func (c *Collector) LoginOutcome(result, reason string) {
	c.logins.WithLabelValues(result, reason).Inc()
}

func (c *Collector) HTTPRequest(method string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method).Observe(d.Seconds())
}

// Handler returns the Prometheus scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
