package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline and embedding Prometheus metrics.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopsense",
			Name:      "searches_total",
			Help:      "Total number of hybrid searches by outcome",
		},
		[]string{"outcome"}, // "results" / "suggestions" / "empty" / "degraded"
	)

	SearchStageHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopsense",
			Name:      "search_stage_hits_total",
			Help:      "Products admitted to results per pipeline stage",
		},
		[]string{"stage"}, // "substring" / "fuzzy"
	)

	RecommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopsense",
			Name:      "recommendations_total",
			Help:      "Total number of recommendation requests",
		},
		[]string{"status"}, // "ok" / "not_found" / "error"
	)

	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopsense",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shopsense",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopsense",
			Name:      "embedding_tokens_total",
			Help:      "Total embedding tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopsense",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers pipeline and embedding metrics. Must be
// called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchStageHits)
	prometheus.MustRegister(RecommendationsTotal)
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingTokensTotal)
	prometheus.MustRegister(EmbeddingCacheTotal)
	pipelineMetricsRegistered = true
}
