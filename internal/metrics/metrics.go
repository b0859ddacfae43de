// Package metrics exposes Prometheus counters for sort runs and the map server.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "photobot",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "photobot",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Sort metrics
	FilesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "photobot",
		Subsystem: "sort",
		Name:      "files_total",
		Help:      "Files handled by sort runs, by outcome",
	}, []string{"action"})

	Classifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "photobot",
		Subsystem: "sort",
		Name:      "classifications_total",
		Help:      "Classification results by matched group kind",
	}, []string{"kind"})

	IncompleteMetadata = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "photobot",
		Subsystem: "metadata",
		Name:      "incomplete_total",
		Help:      "Files whose metadata could not be fully read",
	}, []string{"source"})

	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "photobot",
		Subsystem: "sort",
		Name:      "runs_total",
		Help:      "Completed sort runs by status",
	}, []string{"status"})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "photobot",
		Subsystem: "sort",
		Name:      "run_duration_seconds",
		Help:      "Duration of sort runs",
		Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 1800},
	})

	// Group editor metrics
	GroupsAppended = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "photobot",
		Subsystem: "groups",
		Name:      "appended_total",
		Help:      "Groups appended to the store by kind",
	}, []string{"kind"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "photobot",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the middleware.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Middleware records request metrics labelled by route template.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the Prometheus /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
