package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aliskhannn/boulder-progress/internal/domain/entities"
)

const namespace = "boulders"

// Metrics holds the Prometheus collectors of the service.
type Metrics struct {
	registry *prometheus.Registry

	RequestDuration *prometheus.HistogramVec
	Requests        *prometheus.CounterVec
	Resets          *prometheus.CounterVec
	ResetDeleted    prometheus.Counter
	LastReset       prometheus.Gauge
	ProgressWrites  *prometheus.CounterVec
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests by route.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"method", "route"},
		),

		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status code.",
			},
			[]string{"method", "route", "status"},
		),

		Resets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resets_total",
				Help:      "Monthly reset attempts by caller and outcome.",
			},
			[]string{"caller", "outcome"},
		),

		ResetDeleted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reset_deleted_records_total",
				Help:      "Progress rows removed by resets.",
			},
		),

		LastReset: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_reset_timestamp_seconds",
				Help:      "Unix time of the last successful reset.",
			},
		),

		ProgressWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "progress_writes_total",
				Help:      "Progress mutations by kind.",
			},
			[]string{"kind"},
		),
	}

	m.registry.MustRegister(
		m.RequestDuration,
		m.Requests,
		m.Resets,
		m.ResetDeleted,
		m.LastReset,
		m.ProgressWrites,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
	m.Requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// ObserveReset records the outcome of a reset. result is nil on failure.
func (m *Metrics) ObserveReset(caller entities.CallerKind, result *entities.ResetResult) {
	if result == nil {
		m.Resets.WithLabelValues(string(caller), "failed").Inc()
		return
	}

	m.Resets.WithLabelValues(string(caller), "succeeded").Inc()
	m.ResetDeleted.Add(float64(result.DeletedRecords))
	m.LastReset.Set(float64(result.ResetTimestamp.Unix()))
}

func (m *Metrics) ObserveProgressWrite(kind string) {
	m.ProgressWrites.WithLabelValues(kind).Inc()
}
