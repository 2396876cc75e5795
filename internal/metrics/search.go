package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docsearch",
			Name:      "search_duration_seconds",
			Help:      "Search duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"mode", "outcome"}, // outcome: "hit" / "miss" / "error"
	)

	CacheEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsearch",
			Name:      "search_cache_events_total",
			Help:      "Result cache hits, misses, writes, write failures and evictions",
		},
		[]string{"event"},
	)

	CacheSweepRemovedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docsearch",
			Name:      "search_cache_sweep_removed_total",
			Help:      "Expired cache entries removed by the periodic sweeper",
		},
	)

	DocumentsUploadedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsearch",
			Name:      "documents_uploaded_total",
			Help:      "Uploaded documents by media type and status",
		},
		[]string{"mime_type", "status"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers the search pipeline metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(CacheEventsTotal)
	prometheus.MustRegister(CacheSweepRemovedTotal)
	prometheus.MustRegister(DocumentsUploadedTotal)
	searchMetricsRegistered = true
}
