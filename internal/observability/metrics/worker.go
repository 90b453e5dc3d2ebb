package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	ingestTotal    *prometheus.CounterVec
	ingestDuration *prometheus.HistogramVec
	ingestInFlight prometheus.Gauge
	queueLag       *prometheus.HistogramVec
	retryTotal     *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	ingestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "ingest_total",
			Help:      "Total upload events handled, by outcome.",
		},
		[]string{"service", "outcome"},
	)
	ingestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "ingest_duration_seconds",
			Help:      "Upload event handling duration in seconds by outcome.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"service", "outcome"},
	)
	ingestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "worker",
			Name:        "ingest_in_flight",
			Help:        "Number of upload events being handled.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between upload and handling start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	retryTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "outbound_retries_total",
			Help:      "Retries of outbound calls by operation.",
		},
		[]string{"service", "operation"},
	)

	registry.MustRegister(ingestTotal, ingestDuration, ingestInFlight, queueLag, retryTotal)

	return &WorkerMetrics{
		registry:       registry,
		ingestTotal:    ingestTotal,
		ingestDuration: ingestDuration,
		ingestInFlight: ingestInFlight,
		queueLag:       queueLag,
		retryTotal:     retryTotal,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartIngest() {
	m.ingestInFlight.Inc()
}

// FinishIngest records the outcome label, or "error" when err is set.
func (m *WorkerMetrics) FinishIngest(service, outcome string, duration time.Duration, err error) {
	m.ingestInFlight.Dec()

	if err != nil {
		outcome = "error"
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.ingestTotal.WithLabelValues(service, outcome).Inc()
	m.ingestDuration.WithLabelValues(service, outcome).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}

func (m *WorkerMetrics) RecordRetry(service, operation string) {
	m.retryTotal.WithLabelValues(service, operation).Inc()
}
