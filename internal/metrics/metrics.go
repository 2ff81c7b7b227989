// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "msid"

var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures request latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// IDsMintedTotal counts identifiers encoded, by resolution.
	IDsMintedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ids_minted_total",
			Help:      "Total number of identifiers encoded",
		},
		[]string{"resolution"},
	)

	// IDsDecodedTotal counts identifiers decoded, by resolution and whether
	// the resolution was inferred from the identifier length.
	IDsDecodedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ids_decoded_total",
			Help:      "Total number of identifiers decoded",
		},
		[]string{"resolution", "inferred"},
	)

	// CodecErrorsTotal counts failed encode and decode calls by error code.
	CodecErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "codec_errors_total",
			Help:      "Total number of failed codec operations",
		},
		[]string{"operation", "code"},
	)

	// ProfileCacheHitsTotal counts profile cache hits.
	ProfileCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_cache_hits_total",
			Help:      "Total number of profile cache hits",
		},
	)

	// ProfileCacheMissesTotal counts profile cache misses.
	ProfileCacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_cache_misses_total",
			Help:      "Total number of profile cache misses",
		},
	)

	// QuotaRejectionsTotal counts mint requests rejected by the per-client quota.
	QuotaRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_rejections_total",
			Help:      "Total number of mint requests rejected by the identifier quota",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRequest records an HTTP request metric.
func RecordRequest(method, path string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordMinted records n identifiers encoded at resolution.
func RecordMinted(resolution string, n int) {
	IDsMintedTotal.WithLabelValues(resolution).Add(float64(n))
}

// RecordDecoded records a decoded identifier.
func RecordDecoded(resolution string, inferred bool) {
	IDsDecodedTotal.WithLabelValues(resolution, strconv.FormatBool(inferred)).Inc()
}

// RecordCodecError records a failed codec operation.
func RecordCodecError(operation, code string) {
	CodecErrorsTotal.WithLabelValues(operation, code).Inc()
}

// RecordProfileCacheHit records a profile cache hit.
func RecordProfileCacheHit() {
	ProfileCacheHitsTotal.Inc()
}

// RecordProfileCacheMiss records a profile cache miss.
func RecordProfileCacheMiss() {
	ProfileCacheMissesTotal.Inc()
}

// RecordQuotaRejection records a mint request rejected by the quota.
func RecordQuotaRejection() {
	QuotaRejectionsTotal.Inc()
}
