// Package metrics defines the Prometheus metrics of the Billed server.
// They are registered with the default registry on import and exposed on
// /metrics by the handlers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "billed"

// ReceiptUploadsTotal counts receipt selections.
// Label result: accepted, rejected (bad extension) or failed (store error).
var ReceiptUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "receipt_uploads_total",
		Help:      "Total number of receipt files selected, by outcome.",
	},
	[]string{"result"},
)

// BillsSubmittedTotal counts new-bill submissions.
// Label result: saved, failed (store error) or blocked (no receipt held).
var BillsSubmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bills_submitted_total",
		Help:      "Total number of bill submissions, by outcome.",
	},
	[]string{"result"},
)

// BillsReviewedTotal counts admin decisions. Label status: accepted or refused.
var BillsReviewedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bills_reviewed_total",
		Help:      "Total number of bills accepted or refused by an admin.",
	},
	[]string{"status"},
)

// HTTPRequestDuration measures request latency.
// Labels: method, pattern (the ServeMux pattern) and code.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "pattern", "code"},
)
