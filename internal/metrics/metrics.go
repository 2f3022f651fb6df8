package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the flight board
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Reconciliation Metrics
	SweepTicksTotal     *prometheus.CounterVec
	SweepDuration       prometheus.Histogram
	SweepRecordsScanned prometheus.Counter
	StatusChangesTotal  *prometheus.CounterVec

	// Mutation Metrics
	MutationsTotal *prometheus.CounterVec

	// Notification Metrics
	EventsPublishedTotal  *prometheus.CounterVec
	EventsDroppedTotal    *prometheus.CounterVec
	DeliveriesTotal       prometheus.Counter
	DeliveryFailuresTotal *prometheus.CounterVec
	NotifierQueueDepth    prometheus.Gauge
	SessionsActive        prometheus.Gauge
}

// NewMetricsRegistry registers every metric against reg. Pass
// prometheus.DefaultRegisterer in the server and a fresh registry in tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightboard_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flightboard_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "flightboard_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Cache Metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightboard_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightboard_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		// Reconciliation Metrics
		SweepTicksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightboard_sweep_ticks_total",
				Help: "Reconciliation ticks by result (ok, partial, aborted)",
			},
			[]string{"result"},
		),
		SweepDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "flightboard_sweep_duration_seconds",
				Help:    "Reconciliation tick execution time in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			},
		),
		SweepRecordsScanned: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "flightboard_sweep_records_scanned_total",
				Help: "Flight records evaluated by the reconciliation sweep",
			},
		),
		StatusChangesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightboard_status_changes_total",
				Help: "Persisted status transitions by new status and writer",
			},
			[]string{"status", "writer"},
		),

		// Mutation Metrics
		MutationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightboard_mutations_total",
				Help: "Client mutations by operation and result",
			},
			[]string{"operation", "result"},
		),

		// Notification Metrics
		EventsPublishedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightboard_events_published_total",
				Help: "Events fanned out to sessions by type",
			},
			[]string{"type"},
		),
		EventsDroppedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightboard_events_dropped_total",
				Help: "Events or changes dropped before fan-out by reason",
			},
			[]string{"reason"},
		),
		DeliveriesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "flightboard_deliveries_total",
				Help: "Successful per-session deliveries",
			},
		),
		DeliveryFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightboard_delivery_failures_total",
				Help: "Abandoned per-session deliveries by reason",
			},
			[]string{"reason"},
		),
		NotifierQueueDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "flightboard_notifier_queue_depth",
				Help: "Events waiting for the dispatcher",
			},
		),
		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "flightboard_sessions_active",
				Help: "Sessions currently joined to the board",
			},
		),
	}
}

// OrDiscard returns m, or a registry bound to a throwaway prometheus registry when m is nil
func OrDiscard(m *MetricsRegistry) *MetricsRegistry {
	if m != nil {
		return m
	}
	return NewMetricsRegistry(prometheus.NewRegistry())
}
