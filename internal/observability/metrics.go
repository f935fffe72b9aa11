package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion engine.
type Metrics struct {
	DatesProcessed prometheus.Counter
	DatesInserted  prometheus.Counter
	DatesSkipped   prometheus.Counter
	IngestErrors   prometheus.Counter

	// Source resolution metrics.
	SourceQueries   *prometheus.CounterVec // labels: source={gsod,visualcrossing}, outcome={hit,miss,error}
	FallbackEnabled prometheus.Gauge

	IngestDuration prometheus.Histogram
}

// NewMetrics creates and registers all ingestion metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		DatesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_ingest",
			Name:      "dates_processed_total",
			Help:      "Total calendar dates the ingestor has examined.",
		}),
		DatesInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_ingest",
			Name:      "dates_inserted_total",
			Help:      "Total observations written to the destination table.",
		}),
		DatesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_ingest",
			Name:      "dates_skipped_total",
			Help:      "Total dates skipped because a record already existed.",
		}),
		IngestErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_ingest",
			Name:      "ingest_errors_total",
			Help:      "Total per-date ingestion failures.",
		}),
		SourceQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_ingest",
			Name:      "source_queries_total",
			Help:      "Source queries by source and outcome.",
		}, []string{"source", "outcome"}),
		FallbackEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_ingest",
			Name:      "fallback_enabled",
			Help:      "1 when the external weather API fallback is configured, 0 otherwise.",
		}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_ingest",
			Name:      "ingest_duration_seconds",
			Help:      "Duration of a complete single-date ingestion.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}

	prometheus.MustRegister(
		m.DatesProcessed,
		m.DatesInserted,
		m.DatesSkipped,
		m.IngestErrors,
		m.SourceQueries,
		m.FallbackEnabled,
		m.IngestDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests can
// construct the engine repeatedly without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		DatesProcessed:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_ingest", Name: "dates_processed_total"}),
		DatesInserted:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_ingest", Name: "dates_inserted_total"}),
		DatesSkipped:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_ingest", Name: "dates_skipped_total"}),
		IngestErrors:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_ingest", Name: "ingest_errors_total"}),
		SourceQueries:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "weather_ingest", Name: "source_queries_total"}, []string{"source", "outcome"}),
		FallbackEnabled: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "weather_ingest", Name: "fallback_enabled"}),
		IngestDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "weather_ingest", Name: "ingest_duration_seconds"}),
	}
}
