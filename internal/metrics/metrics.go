// Package metrics exposes Prometheus collectors for the engine and the HTTP
// layer. Collectors register with the default registry on import.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cognicore/habitual/pkg/habitual/recommend"
)

var (
	// Engine
	SuggestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habitual_suggestions_total",
			Help: "Suggestions made, by strategy",
		},
		[]string{"strategy"},
	)

	DecisionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "habitual_decision_duration_seconds",
			Help:    "Time spent vectorizing, classifying and filtering per suggestion",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
	)

	DominantCategoryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habitual_dominant_category_total",
			Help: "Times each category was found dominant",
		},
		[]string{"category"},
	)

	PoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "habitual_novel_pool_size",
			Help:    "Number of candidates surviving the novelty filter",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
		},
	)

	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habitual_api_requests_total",
			Help: "HTTP requests, by method, route and status",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "habitual_api_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// History store
	HistoryErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "habitual_history_errors_total",
			Help: "Failed writes to the suggestion history",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}


// EngineObserver feeds engine decisions into the collectors above.
type EngineObserver struct{}

// ObserveDecision implements recommend.Observer.
func (EngineObserver) ObserveDecision(d recommend.Decision, elapsed time.Duration) {
	SuggestionsTotal.WithLabelValues(string(d.Strategy)).Inc()
	DecisionDuration.Observe(elapsed.Seconds())
	if d.Strategy == recommend.StrategyRandom {
		return
	}
	DominantCategoryTotal.WithLabelValues(d.Dominant).Inc()
	PoolSize.Observe(float64(len(d.Pool)))
}

// ObserveHistoryError implements recommend.Observer.
func (EngineObserver) ObserveHistoryError(error) {
	HistoryErrors.Inc()
}

var _ recommend.Observer = EngineObserver{}
