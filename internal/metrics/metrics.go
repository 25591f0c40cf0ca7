package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FilterRequests counts filter requests by scope ("category" or "global") and outcome.
	FilterRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopcatalog_filter_requests_total",
		Help: "Total product filter requests by scope and outcome",
	}, []string{"scope", "outcome"})

	FilterDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shopcatalog_filter_duration_seconds",
		Help:    "Product filter evaluation time in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
	}, []string{"scope"})

	FilterResultSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shopcatalog_filter_result_items",
		Help:    "Number of products matched per filter request before pagination",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})

	TreeCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopcatalog_category_tree_cache_total",
		Help: "Category tree snapshot cache lookups by result",
	}, []string{"result"}) // "hit", "miss" or "error"

	// InconsistentAttributeRows counts flexible rows found with both or neither value field set.
	InconsistentAttributeRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopcatalog_inconsistent_attribute_rows_total",
		Help: "Flexible attribute rows read with both or neither of predefined and custom value",
	})

	NewArrivalRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopcatalog_new_arrival_runs_total",
		Help: "New arrival maintenance runs by result",
	}, []string{"result"})
)
