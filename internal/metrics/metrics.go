// Package metrics exposes Prometheus collectors for the catalog server.
package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	searchEvaluations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "catalog",
			Subsystem: "view",
			Name:      "search_evaluations_total",
			Help:      "Number of debounced filter evaluations.",
		},
	)
	searchMatches = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "catalog",
			Subsystem: "view",
			Name:      "search_matches",
			Help:      "Products matched per filter evaluation.",
			Buckets:   []float64{0, 1, 10, 50, 100, 500, 1000, 5000},
		},
	)
	rowMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalog",
			Subsystem: "rows",
			Name:      "mutations_total",
			Help:      "Committed row mutation intents by kind (edit, delete).",
		}, []string{"kind"},
	)
	cartAdds = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "catalog",
			Subsystem: "cart",
			Name:      "adds_total",
			Help:      "Products added to carts.",
		},
	)
	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "catalog",
			Subsystem: "session",
			Name:      "active",
			Help:      "Workspaces currently held in memory.",
		},
	)
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "catalog",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "code"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{searchEvaluations, searchMatches, rowMutations, cartAdds, activeSessions, requestDuration}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			// Already registered with this registry: keep the existing one.
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler serves metrics from the default gatherer.
func Handler() http.Handler { return promhttp.Handler() }

// HandlerFor serves metrics from g.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// The helpers below no-op until Register has succeeded.

func ObserveSearch(matches int) {
	if regOK.Load() {
		searchEvaluations.Inc()
		searchMatches.Observe(float64(matches))
	}
}

func IncEdit() {
	if regOK.Load() {
		rowMutations.WithLabelValues("edit").Inc()
	}
}

func IncDelete() {
	if regOK.Load() {
		rowMutations.WithLabelValues("delete").Inc()
	}
}

func IncCartAdd() {
	if regOK.Load() {
		cartAdds.Inc()
	}
}

func SetActiveSessions(n int) {
	if regOK.Load() {
		activeSessions.Set(float64(n))
	}
}

func ObserveRequest(method, route, code string, d time.Duration) {
	if regOK.Load() {
		requestDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
	}
}
