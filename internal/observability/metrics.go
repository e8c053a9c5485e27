package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreOperations counts store operations by backend, operation and outcome.
	StoreOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rumorplaza_store_operations_total",
		Help: "Total number of store operations by backend, operation and outcome",
	}, []string{"backend", "operation", "outcome"})

	// StoreLatency records store operation latency by backend and operation.
	StoreLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rumorplaza_store_latency_seconds",
		Help:    "Store operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "operation"})

	// ImageUploads counts image uploads by outcome.
	ImageUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rumorplaza_image_uploads_total",
		Help: "Total number of image uploads by outcome",
	}, []string{"outcome"})

	// ImageBytesSaved observes how many bytes optimization removed per image.
	ImageBytesSaved = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rumorplaza_image_bytes_saved",
		Help:    "Bytes removed by image optimization",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
	})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rumorplaza_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})
)

// TrackStoreOperation returns a function that records latency and outcome when called (e.g. defer).
func TrackStoreOperation(backend, operation string) func(err error) {
	start := time.Now()
	return func(err error) {
		StoreLatency.WithLabelValues(backend, operation).Observe(time.Since(start).Seconds())
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		StoreOperations.WithLabelValues(backend, operation, outcome).Inc()
	}
}
