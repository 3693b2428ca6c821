// Package metrics exposes Prometheus collectors for spellcheck runs. Batch
// runs have no scrape endpoint, so the registry is written to a textfile for
// the node_exporter textfile collector at the end of a run.
package metrics

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registry = prometheus.NewRegistry()
	factory  = promauto.With(registry)

	spellcheckRecordsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spellcheck_records_total",
			Help: "Total number of records processed, labeled by site and status.",
		},
		[]string{"site", "status"},
	)

	spellcheckRecordDurationSeconds = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spellcheck_record_duration_seconds",
			Help:    "Histogram of per-record task latencies, labeled by status.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"status"},
	)

	spellcheckMisspellingsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spellcheck_misspellings_total",
			Help: "Total misspelling occurrences found, labeled by site.",
		},
		[]string{"site"},
	)

	spellcheckOpenSessions = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "spellcheck_open_sessions",
			Help: "Number of fetch sessions currently open.",
		},
	)

	spellcheckBatchesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "spellcheck_batches_total",
			Help: "Total number of batches executed.",
		},
	)

	spellcheckBatchSize = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "spellcheck_batch_size",
			Help:    "Histogram of records per batch.",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		},
	)

	spellcheckRateLimitDelaySeconds = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spellcheck_rate_limit_delay_seconds",
			Help:    "Histogram of per-host rate limit wait durations.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"site"},
	)
)

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Gatherer returns the registry holding every spellcheck collector.
func Gatherer() prometheus.Gatherer {
	return registry
}

// WriteTextfile writes the current registry contents to path.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// ObserveRecord records a finished task for target.
func ObserveRecord(target string, status string, duration time.Duration, misspellings int) {
	site := SanitizeSite(target)
	spellcheckRecordsTotal.WithLabelValues(site, status).Inc()
	spellcheckRecordDurationSeconds.WithLabelValues(status).Observe(duration.Seconds())
	if misspellings > 0 {
		spellcheckMisspellingsTotal.WithLabelValues(site).Add(float64(misspellings))
	}
}

// ObserveBatch records a completed batch of the given size.
func ObserveBatch(size int) {
	spellcheckBatchesTotal.Inc()
	spellcheckBatchSize.Observe(float64(size))
}

// IncOpenSessions increments the open sessions gauge.
func IncOpenSessions() {
	spellcheckOpenSessions.Inc()
}

// DecOpenSessions decrements the open sessions gauge.
func DecOpenSessions() {
	spellcheckOpenSessions.Dec()
}

// ObserveRateLimitDelay records how long a fetch waited for its host's rate limit.
func ObserveRateLimitDelay(site string, d time.Duration) {
	spellcheckRateLimitDelaySeconds.WithLabelValues(site).Observe(d.Seconds())
}
