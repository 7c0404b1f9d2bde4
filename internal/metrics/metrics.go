// Package metrics provides Prometheus metrics for the repository client.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reponav_requests_total",
			Help: "Total repository API requests",
		},
		[]string{"operation", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reponav_request_duration_seconds",
			Help:    "Repository API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	tokenRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reponav_token_refreshes_total",
			Help: "Total access token refreshes triggered by 401 responses",
		},
		[]string{"result"},
	)

	bytesDownloaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reponav_content_bytes_downloaded_total",
			Help: "Total bytes downloaded from content endpoints",
		},
	)

	bytesUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reponav_content_bytes_uploaded_total",
			Help: "Total bytes uploaded to content endpoints",
		},
	)

	activePolls = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reponav_active_polls",
			Help: "Number of batch actions currently being polled",
		},
	)

	pollTicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reponav_poll_ticks_total",
			Help: "Total status poll requests issued",
		},
	)

	tokenCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reponav_token_cache_entries",
			Help: "Number of cached concurrency tokens",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRequest records one repository API request.
func RecordRequest(operation string, status int, duration time.Duration) {
	requestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordTokenRefresh records a reactive token refresh attempt.
func RecordTokenRefresh(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	tokenRefreshesTotal.WithLabelValues(result).Inc()
}

// RecordDownload records downloaded content bytes.
func RecordDownload(bytes int64) {
	bytesDownloaded.Add(float64(bytes))
}

// RecordUpload records uploaded content bytes.
func RecordUpload(bytes int64) {
	bytesUploaded.Add(float64(bytes))
}

// PollStarted marks a batch action poll as active.
func PollStarted() {
	activePolls.Inc()
}

// PollEnded marks a batch action poll as finished.
func PollEnded() {
	activePolls.Dec()
}

// RecordPollTick records one status poll request.
func RecordPollTick() {
	pollTicksTotal.Inc()
}

// SetTokenCacheSize sets the current concurrency-token cache size.
func SetTokenCacheSize(n int) {
	tokenCacheSize.Set(float64(n))
}
