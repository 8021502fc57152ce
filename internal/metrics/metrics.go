// Package metrics holds the prometheus collectors exported by packbox.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type (
	Metrics struct {
		registry        *prometheus.Registry
		requestDuration *prometheus.HistogramVec
		authAttempts    *prometheus.CounterVec
		kdfDuration     *prometheus.HistogramVec
	}
)

// New creates a fresh registry with the packbox collectors plus the go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "packbox_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		authAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "packbox_auth_attempts_total",
				Help: "Signup, signin and token checks by outcome",
			},
			[]string{"event", "success"},
		),
		kdfDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "packbox_kdf_duration_seconds",
				Help:    "Time spent deriving password keys",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"op"},
		),
	}
	m.registry.MustRegister(
		m.requestDuration,
		m.authAttempts,
		m.kdfDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Middleware records the duration of every request, paths not listed in
// routes are reported as "unmatched" to keep the label set bounded.
func (m *Metrics) Middleware(routes []string) func(http.Handler) http.Handler {
	known := make(map[string]bool, len(routes))
	for _, r := range routes {
		known[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			path := r.URL.Path
			if !known[path] {
				path = "unmatched"
			}
			m.requestDuration.WithLabelValues(r.Method, path, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
		})
	}
}

func (m *Metrics) AuthAttempt(event string, success bool) {
	m.authAttempts.WithLabelValues(event, strconv.FormatBool(success)).Inc()
}

func (m *Metrics) ObserveKDF(op string, elapsed time.Duration) {
	m.kdfDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
