// Package metrics provides Prometheus instrumentation for the moderation
// core. It exposes counters for filter decisions and strikes, and a
// histogram for decision latency.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MessagesChecked counts every message run through the filter.
	MessagesChecked = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "moderation_messages_checked_total",
		Help: "Total number of messages run through the content filter",
	})

	// MessagesBlocked counts blocked messages, labeled by the recorded
	// violation category.
	MessagesBlocked = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_messages_blocked_total",
		Help: "Total number of messages blocked by the content filter",
	}, []string{"category"})

	// StrikesRecorded counts strikes written to the ledger.
	StrikesRecorded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "moderation_strikes_recorded_total",
		Help: "Total number of strikes recorded against users",
	})

	// SuspensionsTriggered counts strikes that pushed a user over the
	// suspension threshold.
	SuspensionsTriggered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "moderation_suspensions_triggered_total",
		Help: "Total number of automatic suspensions triggered",
	})

	// FilterLatency records end-to-end filter decision latency in seconds,
	// including the ledger write for blocked messages.
	FilterLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "moderation_filter_latency_seconds",
		Help:    "Content filter decision latency in seconds",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25},
	})
)

func init() {
	prometheus.MustRegister(
		MessagesChecked,
		MessagesBlocked,
		StrikesRecorded,
		SuspensionsTriggered,
		FilterLatency,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
