// Package metrics exposes Prometheus collectors for the budget agent.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	intentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_intents_total",
			Help: "Total number of classified intents labeled by intent and status",
		},
		[]string{"intent", "status"},
	)
	turnDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agent_turn_duration_seconds",
			Help:    "Duration of conversational turns in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"intent"},
	)
	transactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_transactions_total",
			Help: "Total number of appended transactions by kind",
		},
		[]string{"kind"},
	)
	webhookDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_deliveries_total",
			Help: "Total number of webhook delivery attempts by status",
		},
		[]string{"status"},
	)
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency distributions by path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)
)

// RecordIntent increments intent counters and records turn duration.
func RecordIntent(intent, status string, duration time.Duration) {
	if intent == "" {
		intent = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	intentsTotal.WithLabelValues(intent, status).Inc()
	turnDurationSeconds.WithLabelValues(intent).Observe(duration.Seconds())
}

// RecordTransaction counts one appended ledger transaction.
func RecordTransaction(kind string) {
	transactionsTotal.WithLabelValues(kind).Inc()
}

// RecordWebhookDelivery counts one webhook delivery attempt.
func RecordWebhookDelivery(status string) {
	webhookDeliveriesTotal.WithLabelValues(status).Inc()
}

// RecordHTTPRequest counts one handled HTTP request and its latency.
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(path).Observe(duration.Seconds())
}
