package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/grpc/status"
)

var (
	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "folio_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	RateLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "folio_rate_limit_rejections_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	// Tagging engine metrics
	TaggingOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_tagging_operations_total",
			Help: "Total number of tagging engine operations by outcome code",
		},
		[]string{"kind", "operation", "code"},
	)

	TaggingOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "folio_tagging_operation_duration_seconds",
			Help:    "Duration of tagging engine operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind", "operation"},
	)

	AssociationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_associations_created_total",
			Help: "Total number of item-tag associations created",
		},
		[]string{"kind"},
	)

	// Result cache metrics
	ResultCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_result_cache_hits_total",
			Help: "Total number of popularity and similarity cache hits",
		},
		[]string{"kind", "query"},
	)

	ResultCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_result_cache_misses_total",
			Help: "Total number of popularity and similarity cache misses",
		},
		[]string{"kind", "query"},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordTaggingOperation records one engine operation; err is classified by its status code.
func RecordTaggingOperation(kind, operation string, duration time.Duration, err error) {
	TaggingOperationsTotal.WithLabelValues(kind, operation, status.Code(err).String()).Inc()
	TaggingOperationDuration.WithLabelValues(kind, operation).Observe(duration.Seconds())
}

// RecordAssociationsCreated adds n to the created associations counter of kind.
func RecordAssociationsCreated(kind string, n int) {
	if n > 0 {
		AssociationsCreated.WithLabelValues(kind).Add(float64(n))
	}
}

// RecordCacheLookup records a result cache hit or miss.
func RecordCacheLookup(kind, query string, hit bool) {
	if hit {
		ResultCacheHits.WithLabelValues(kind, query).Inc()
		return
	}
	ResultCacheMisses.WithLabelValues(kind, query).Inc()
}
