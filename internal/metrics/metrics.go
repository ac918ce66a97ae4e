// Package metrics collects Prometheus counters for an import and optionally
// pushes them to a Pushgateway when the run ends.
package metrics

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"ndarimport/internal/scitran"
)

const namespace = "ndarimport"

// Recorder owns a private registry so repeated imports in one process never
// collide on the default registerer.
type Recorder struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	entities    *prometheus.CounterVec
	lastSuccess prometheus.Gauge
	runDuration prometheus.Gauge
}

// New constructs a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests sent to the data-management service.",
		}, []string{"method", "collection", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Latency of requests to the data-management service.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"collection"}),
		entities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_created_total",
			Help:      "Projects, sessions, and acquisitions created.",
		}, []string{"kind"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 when the last import completed, 0 when it failed.",
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last import.",
		}),
	}
	r.registry.MustRegister(r.requests, r.latency, r.entities, r.lastSuccess, r.runDuration)
	return r
}

// ObserveRequest records one request. It satisfies scitran.Observer.
func (r *Recorder) ObserveRequest(event scitran.RequestEvent) {
	if r == nil {
		return
	}
	collection := event.Collection
	if collection == "" {
		collection = "unknown"
	}
	r.requests.WithLabelValues(strings.ToUpper(event.Method), collection, statusLabel(event)).Inc()
	r.latency.WithLabelValues(collection).Observe(event.Latency.Seconds())
}

// EntityCreated counts one created entity of the given kind.
func (r *Recorder) EntityCreated(kind string) {
	if r == nil {
		return
	}
	r.entities.WithLabelValues(kind).Inc()
}

// RunFinished sets the last-run gauges.
func (r *Recorder) RunFinished(runErr error, seconds float64) {
	if r == nil {
		return
	}
	if runErr != nil {
		r.lastSuccess.Set(0)
	} else {
		r.lastSuccess.Set(1)
	}
	r.runDuration.Set(seconds)
}

// Push sends the registry to a Pushgateway under job, grouped by run id.
func (r *Recorder) Push(ctx context.Context, gatewayURL, job, runID string) error {
	if r == nil || strings.TrimSpace(gatewayURL) == "" {
		return nil
	}
	pusher := push.New(gatewayURL, job).Gatherer(r.registry)
	if runID != "" {
		pusher = pusher.Grouping("run_id", runID)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}

func statusLabel(event scitran.RequestEvent) string {
	if event.StatusCode == 0 {
		return "error"
	}
	return strconv.Itoa(event.StatusCode)
}
