// Package metrics exposes Prometheus counters for appointment lifecycle
// transitions and HTTP responses.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the subset used by the lifecycle service.
type Recorder interface {
	RecordTransition(action string)
	RecordTransitionMiss(action string)
}

type Collector struct {
	transitions    *prometheus.CounterVec
	transitionMiss *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salon_appointment_transitions_total",
			Help: "Appointment lifecycle operations that changed a record.",
		}, []string{"action"}),
		transitionMiss: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salon_appointment_transition_misses_total",
			Help: "Lifecycle operations that matched no record in the expected status.",
		}, []string{"action"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salon_http_requests_total",
			Help: "HTTP responses by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "salon_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(c.transitions, c.transitionMiss, c.httpRequests, c.httpLatency)
	return c
}

func (c *Collector) RecordTransition(action string) {
	c.transitions.WithLabelValues(action).Inc()
}

func (c *Collector) RecordTransitionMiss(action string) {
	c.transitionMiss.WithLabelValues(action).Inc()
}

func (c *Collector) RecordHTTP(method, route string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Middleware records every response under its chi route pattern so that
// path parameters do not explode label cardinality.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		c.RecordHTTP(r.Method, route, status, time.Since(start))
	})
}

func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

type Noop struct{}

func (Noop) RecordTransition(string) {}
func (Noop) RecordTransitionMiss(string) {}
