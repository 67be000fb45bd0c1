package scraper

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the scraper.
type Metrics struct {
	Registry         *prometheus.Registry
	FetchesTotal     *prometheus.CounterVec
	RenderDuration   prometheus.Histogram
	RecordsExtracted prometheus.Counter
	ErrorsTotal      *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	fetches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_fetches_total",
			Help: "Page fetches by phase (started, succeeded, failed).",
		},
		[]string{"phase"},
	)
	renderDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_render_duration_seconds",
			Help:    "Time spent rendering a page in the headless browser.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
	)
	records := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_records_extracted_total",
			Help: "Total number of records produced by the extraction schema.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "Total number of scraper errors by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(fetches, renderDuration, records, errorsTotal)

	return &Metrics{
		Registry:         registry,
		FetchesTotal:     fetches,
		RenderDuration:   renderDuration,
		RecordsExtracted: records,
		ErrorsTotal:      errorsTotal,
	}
}

// IncFetch increments the fetch counter for a phase.
func (m *Metrics) IncFetch(phase string) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(phase).Inc()
}

// ObserveRender records a browser render duration.
func (m *Metrics) ObserveRender(d time.Duration) {
	if m == nil {
		return
	}
	m.RenderDuration.Observe(d.Seconds())
}

// AddRecords increments the extracted records counter.
func (m *Metrics) AddRecords(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RecordsExtracted.Add(float64(n))
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
