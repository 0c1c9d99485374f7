package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SharesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stocksage",
			Subsystem: "share",
			Name:      "created_total",
			Help:      "Shared conversations create attempts by outcome",
		},
		[]string{"status"},
	)

	SharesRetrievedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stocksage",
			Subsystem: "share",
			Name:      "retrieved_total",
			Help:      "Shared conversation lookups by outcome",
		},
		[]string{"status"},
	)

	SharedMessages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "stocksage",
			Subsystem: "share",
			Name:      "messages",
			Help:      "Number of messages per created share",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)

// RecordShareCreate tracks one create attempt; status is success, invalid or error.
func RecordShareCreate(status string, messages int) {
	SharesCreatedTotal.WithLabelValues(status).Inc()
	if status == "success" {
		SharedMessages.Observe(float64(messages))
	}
}

// RecordShareRetrieve tracks one lookup; status is found, not_found, invalid or error.
func RecordShareRetrieve(status string) {
	SharesRetrievedTotal.WithLabelValues(status).Inc()
}
