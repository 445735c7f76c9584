package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry = prometheus.NewRegistry()
	initOnce sync.Once

	checksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdfcheck",
			Name:      "checks_total",
			Help:      "Total checks run by check and result (pass, fail, error)",
		},
		[]string{"check", "result"},
	)

	checkDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pdfcheck",
			Name:      "check_duration_seconds",
			Help:      "Duration of checks by check",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"check"},
	)

	pagesAnalyzed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdfcheck",
			Name:      "pages_analyzed_total",
			Help:      "Pages read by check",
		},
		[]string{"check"},
	)

	duplicatePairs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdfcheck",
			Name:      "duplicate_pairs_total",
			Help:      "Duplicate page pairs reported by check",
		},
		[]string{"check"},
	)

	mergedPages = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pdfcheck",
			Name:      "merged_pages_total",
			Help:      "Total pages written by merge",
		},
	)
)

// Init registers collectors. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		registry.MustRegister(checksTotal, checkDuration, pagesAnalyzed, duplicatePairs, mergedPages)
	})
}

// WriteTextfile writes the current metrics in the node-exporter textfile format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, registry)
}

func ObserveCheck(check, result string, dur time.Duration) {
	checksTotal.WithLabelValues(check, result).Inc()
	checkDuration.WithLabelValues(check).Observe(dur.Seconds())
}

func AddPages(check string, n int)      { pagesAnalyzed.WithLabelValues(check).Add(float64(n)) }
func AddDuplicates(check string, n int) { duplicatePairs.WithLabelValues(check).Add(float64(n)) }
func AddMerged(n int)                   { mergedPages.Add(float64(n)) }
