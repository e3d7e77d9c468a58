package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for report refreshes.
type Metrics struct {
	// Refresh outcomes by status and cache result
	Refreshes *prometheus.CounterVec

	// Source failures by error category
	SourceErrors *prometheus.CounterVec

	// Full refresh latency including fetch, normalize and dedup
	RefreshLatency prometheus.Histogram

	// Size of the latest snapshot: total, kept_raw, kept_strict
	Submissions *prometheus.GaugeVec
}

// New creates a Metrics instance registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bizverify_refreshes_total",
			Help: "Dataset refreshes by status and whether the export came from cache",
		}, []string{"status", "cache"}),

		SourceErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bizverify_source_errors_total",
			Help: "Export load failures by category",
		}, []string{"category"}),

		RefreshLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bizverify_refresh_duration_seconds",
			Help:    "Duration of a dataset refresh",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		Submissions: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bizverify_snapshot_submissions",
			Help: "Submissions in the latest snapshot by kind",
		}, []string{"kind"}),
	}
}

// IncrementRefresh records a refresh outcome.
func (m *Metrics) IncrementRefresh(status string, cacheHit bool) {
	if m != nil {
		cache := "miss"
		if cacheHit {
			cache = "hit"
		}
		m.Refreshes.WithLabelValues(status, cache).Inc()
	}
}

// IncrementSourceError records a failed load.
func (m *Metrics) IncrementSourceError(category string) {
	if m != nil {
		if category == "" {
			category = "other"
		}
		m.SourceErrors.WithLabelValues(category).Inc()
	}
}

// ObserveRefreshLatency records the refresh duration.
func (m *Metrics) ObserveRefreshLatency(d time.Duration) {
	if m != nil {
		m.RefreshLatency.Observe(d.Seconds())
	}
}

// SetSnapshotSize publishes the counts of the latest snapshot.
func (m *Metrics) SetSnapshotSize(total, keptRaw, keptStrict int) {
	if m != nil {
		m.Submissions.WithLabelValues("total").Set(float64(total))
		m.Submissions.WithLabelValues("kept_raw").Set(float64(keptRaw))
		m.Submissions.WithLabelValues("kept_strict").Set(float64(keptStrict))
	}
}
