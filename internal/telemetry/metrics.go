// Package telemetry holds the prometheus metrics of the service.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransfersTotal counts transfer attempts by outcome code ("ok" on success).
	TransfersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pet_finance_transfers_total",
			Help: "Total number of transfer attempts by outcome",
		},
		[]string{"outcome"},
	)

	// TransferCompensationsTotal counts compensating writes by result.
	TransferCompensationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pet_finance_transfer_compensations_total",
			Help: "Total number of compensating source balance writes",
		},
		[]string{"result"}, // restored, failed
	)

	// TransfersUnreconciledTotal counts transfers that need manual reconciliation.
	TransfersUnreconciledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pet_finance_transfers_unreconciled_total",
			Help: "Transfers that debited the source but neither credited the destination nor restored the source",
		},
	)

	// TransferAuditFailuresTotal counts transfer records that could not be appended.
	TransferAuditFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pet_finance_transfer_audit_failures_total",
			Help: "Completed transfers whose audit record append failed",
		},
	)

	// HTTPRequestsTotal counts served http requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pet_finance_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes http request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pet_finance_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
