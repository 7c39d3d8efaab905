package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the paper search service.
// Counters and histograms are registered via promauto with the default
// Prometheus registry.
type Metrics struct {
	// SearchesStarted counts searches initiated, labeled by source and sort method.
	SearchesStarted *prometheus.CounterVec

	// SearchesCompleted counts successful searches, labeled by source and sort method.
	SearchesCompleted *prometheus.CounterVec

	// SearchesFailed counts failed searches, labeled by source and error type.
	SearchesFailed *prometheus.CounterVec

	// SearchDuration observes end-to-end search duration in seconds, labeled by source.
	SearchDuration *prometheus.HistogramVec

	// PapersPerSearch observes the distribution of papers returned per search, labeled by source.
	PapersPerSearch *prometheus.HistogramVec

	// EnrichmentLookups counts enrichment lookups, labeled by outcome
	// ("found", "miss"). A miss covers not-found and absorbed failures alike.
	EnrichmentLookups *prometheus.CounterVec

	// SourceRequestsFailed counts fatal primary-source failures, labeled by source.
	SourceRequestsFailed *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		SearchesStarted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_started_total",
			Help:      "Total number of paper searches started",
		}, []string{"source", "sort"}),
		SearchesCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_completed_total",
			Help:      "Total number of paper searches completed successfully",
		}, []string{"source", "sort"}),
		SearchesFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_failed_total",
			Help:      "Total number of paper searches that failed",
		}, []string{"source", "error_type"}),
		SearchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "End-to-end search duration in seconds, including enrichment",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"source"}),
		PapersPerSearch: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "papers_per_search",
			Help:      "Number of papers returned per search",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100},
		}, []string{"source"}),
		EnrichmentLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichment_lookups_total",
			Help:      "Total number of citation enrichment lookups by outcome",
		}, []string{"outcome"}),
		SourceRequestsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_failed_total",
			Help:      "Total number of fatal primary source failures",
		}, []string{"source"}),
	}
}

// RecordSearchStarted increments the started counter for one search call.
func (m *Metrics) RecordSearchStarted(source, sort string) {
	m.SearchesStarted.WithLabelValues(source, sort).Inc()
}

// RecordSearchCompleted records a successful search with its result count and
// duration in seconds.
func (m *Metrics) RecordSearchCompleted(source, sort string, papers int, seconds float64) {
	m.SearchesCompleted.WithLabelValues(source, sort).Inc()
	m.SearchDuration.WithLabelValues(source).Observe(seconds)
	m.PapersPerSearch.WithLabelValues(source).Observe(float64(papers))
}

// RecordSearchFailed records a failed search with a coarse error type label.
func (m *Metrics) RecordSearchFailed(source, errorType string, seconds float64) {
	m.SearchesFailed.WithLabelValues(source, errorType).Inc()
	m.SearchDuration.WithLabelValues(source).Observe(seconds)
}

// RecordEnrichmentLookup records one enrichment lookup outcome.
func (m *Metrics) RecordEnrichmentLookup(found bool) {
	outcome := "miss"
	if found {
		outcome = "found"
	}
	m.EnrichmentLookups.WithLabelValues(outcome).Inc()
}

// RecordSourceRequestFailed records a fatal primary-source failure.
func (m *Metrics) RecordSourceRequestFailed(source string) {
	m.SourceRequestsFailed.WithLabelValues(source).Inc()
}
