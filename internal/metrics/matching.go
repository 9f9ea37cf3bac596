package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/termdex/internal/domain/match"
)

// Matching Prometheus metrics.
var (
	MatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "termdex",
			Name:      "matches_total",
			Help:      "Total number of returned matches",
		},
		[]string{"type"},
	)

	MatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "termdex",
			Name:      "match_duration_seconds",
			Help:      "String match query duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	FixedTermsCached = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "termdex",
			Name:      "fixed_terms_cached",
			Help:      "Number of cached fixed-term matches",
		},
	)

	StoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "termdex",
			Name:      "store_errors_total",
			Help:      "Total entry store errors",
		},
		[]string{"op"},
	)
)

var matchMetricsRegistered bool

// RegisterMatchMetrics registers Prometheus matching metrics. Must be called once from main.
func RegisterMatchMetrics() {
	if matchMetricsRegistered {
		return
	}
	prometheus.MustRegister(MatchesTotal)
	prometheus.MustRegister(MatchDuration)
	prometheus.MustRegister(FixedTermsCached)
	prometheus.MustRegister(StoreErrorsTotal)
	matchMetricsRegistered = true
}

// Recorder feeds the match engine's observations into the package metrics.
type Recorder struct{}

// ObserveMatches counts matches by type and records the query duration.
func (Recorder) ObserveMatches(ms []match.Match, d time.Duration) {
	for _, m := range ms {
		MatchesTotal.WithLabelValues(string(m.Type)).Inc()
	}
	MatchDuration.Observe(d.Seconds())
}

// ObserveFixedTerms sets the fixed-term cache size.
func (Recorder) ObserveFixedTerms(cached int) {
	FixedTermsCached.Set(float64(cached))
}

// ObserveStoreError counts a failed store call.
func (Recorder) ObserveStoreError(op string) {
	StoreErrorsTotal.WithLabelValues(op).Inc()
}
