package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recommendation pipeline Prometheus metrics.
var (
	RecommendStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "anirec",
			Name:      "recommend_stage_duration_seconds",
			Help:      "Recommendation pipeline stage duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"stage"},
	)

	RecommendFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "anirec",
			Name:      "recommend_fallbacks_total",
			Help:      "Times the pipeline fell back to an earlier stage's output",
		},
		[]string{"stage"},
	)

	RecommendCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "anirec",
			Name:      "recommend_cache_total",
			Help:      "Recommendation cache lookups by result",
		},
		[]string{"result"}, // hit, miss, error
	)
)

// RegisterPipelineMetrics registers pipeline metrics explicitly (no init()).
func RegisterPipelineMetrics() {
	prometheus.MustRegister(RecommendStageDuration)
	prometheus.MustRegister(RecommendFallbacksTotal)
	prometheus.MustRegister(RecommendCacheTotal)
}
