// file: internal/metrics/metrics.go
// version: 2.0.0
// guid: 9f8e7d6c-5b4a-3210-9fed-cba876543210

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "book_catalog"

var (
	registerOnce sync.Once

	commits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commits_total",
		Help:      "Total number of successful commits by backend",
	}, []string{"backend"})
	commitFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commit_failures_total",
		Help:      "Total number of rejected commits by backend and constraint kind",
	}, []string{"backend", "kind"})
	booksStaged = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "books_staged_total",
		Help:      "Total number of records staged for insertion",
	})
	commitDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "commit_duration_seconds",
		Help:      "Histogram of commit durations in seconds by backend",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms .. ~1s
	}, []string{"backend"})

	booksGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "books_total",
		Help:      "Current total number of books in the store",
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(commits, commitFailures, booksStaged, commitDuration, booksGauge)
	})
}

// Commit lifecycle helpers
func IncCommit(backend string)              { commits.WithLabelValues(backend).Inc() }
func IncCommitFailure(backend, kind string) { commitFailures.WithLabelValues(backend, kind).Inc() }
func AddStaged(n int)                       { booksStaged.Add(float64(n)) }
func ObserveCommitDuration(backend string, d time.Duration) {
	commitDuration.WithLabelValues(backend).Observe(d.Seconds())
}

// SetBooks records the current row count
func SetBooks(n int) { booksGauge.Set(float64(n)) }
