// Package metrics collects and exposes Prometheus metrics for the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the HTTP layer reports to.
type Recorder interface {
	RecordRequest(method, route string, status int, elapsed time.Duration)
	RecordAuthEvent(event string)
	RecordDenied(kind, action string)
}

// Auth event labels.
const (
	AuthRegister     = "register"
	AuthLogin        = "login"
	AuthLoginFailed  = "login_failed"
	AuthLogout       = "logout"
	AuthTokenInvalid = "token_invalid"
)

type Collector struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	auth     *prometheus.CounterVec
	denied   *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "blog_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		auth: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_auth_events_total",
			Help: "Authentication events by outcome.",
		}, []string{"event"}),
		denied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_authz_denied_total",
			Help: "Authorization denials by resource kind and action.",
		}, []string{"kind", "action"}),
	}

	reg.MustRegister(c.requests, c.latency, c.auth, c.denied)
	return c
}

func (c *Collector) RecordRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.latency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (c *Collector) RecordAuthEvent(event string) {
	c.auth.WithLabelValues(event).Inc()
}

func (c *Collector) RecordDenied(kind, action string) {
	c.denied.WithLabelValues(kind, action).Inc()
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordRequest(string, string, int, time.Duration) {}
func (Nop) RecordAuthEvent(string)                           {}
func (Nop) RecordDenied(string, string)                      {}

// Handler returns the Prometheus scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
