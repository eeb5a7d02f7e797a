package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "avicenna_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "avicenna_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "avicenna_ai_requests_total",
			Help: "Total number of AI food-log requests sent downstream.",
		},
		[]string{"kind", "status"},
	)

	AIQuotaRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "avicenna_ai_quota_rejections_total",
			Help: "Total number of AI requests rejected by quota, by window.",
		},
		[]string{"window"},
	)

	ImportedEntriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "avicenna_imported_entries_total",
			Help: "Total number of entries created through JSON import.",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		AIRequestsTotal,
		AIQuotaRejectionsTotal,
		ImportedEntriesTotal,
	)
}
