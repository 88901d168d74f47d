package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Batch kinds for StreamBatchesTotal.
const (
	BatchInitial   = "initial"
	BatchIncrement = "increment"
	BatchHeartbeat = "heartbeat"
)

var (
	// Stream metrics
	StreamsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "matchengine_streams_open",
			Help: "Number of conversation streams currently registered",
		},
	)

	StreamBatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchengine_stream_batches_total",
			Help: "Total number of batches pushed to conversation streams by kind",
		},
		[]string{"kind"},
	)

	StreamDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "matchengine_stream_dropped_total",
			Help: "Total number of pending batches dropped because a stream buffer was full",
		},
	)

	// Relationship metrics
	ContactsFoundTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchengine_contacts_found_total",
			Help: "Total number of new contact searches by outcome",
		},
		[]string{"outcome"},
	)

	MatchmakeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchengine_matchmake_total",
			Help: "Total number of matchmake attempts by outcome",
		},
		[]string{"outcome"},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchengine_api_requests_total",
			Help: "Total number of API requests by method and status",
		},
		[]string{"method", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matchengine_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(StreamsOpen)
	prometheus.MustRegister(StreamBatchesTotal)
	prometheus.MustRegister(StreamDroppedTotal)
	prometheus.MustRegister(ContactsFoundTotal)
	prometheus.MustRegister(MatchmakeTotal)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Outcome returns "ok" for a nil error and "error" otherwise.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Timer measures the duration of an operation
type Timer struct {
	start time.Time
}

// NewTimer starts a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the time elapsed since the timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDurationVec records the elapsed time on a histogram vector
func (t *Timer) ObserveDurationVec(h *prometheus.HistogramVec, labels ...string) {
	h.WithLabelValues(labels...).Observe(t.Duration().Seconds())
}
