// Package metrics defines the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Send pipeline metrics
var (
	SendAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_send_attempts_total",
			Help: "Total per-recipient send attempts by outcome",
		},
		[]string{"app_id", "event_type", "outcome"}, // sent, duplicate, failed
	)

	DeliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lifecycle_delivery_duration_seconds",
			Help:    "Duration of gateway delivery calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"app_id"},
	)

	DedupClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_dedup_claims_total",
			Help: "Dedup ledger claim attempts by result",
		},
		[]string{"result"}, // claimed, duplicate
	)

	RecipientFanout = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lifecycle_recipient_fanout",
			Help:    "Number of recipients per send request",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		},
	)
)

// Template metrics
var (
	TemplateDeploysTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_template_deploys_total",
			Help: "Template deploy operations by action",
		},
		[]string{"action"}, // created, updated
	)
)

// API metrics
var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lifecycle_api_request_duration_seconds",
			Help:    "Duration of API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	APIAuthFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lifecycle_api_auth_failures_total",
			Help: "Total number of rejected API requests",
		},
	)
)
