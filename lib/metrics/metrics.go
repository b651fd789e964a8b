// Package metrics declares the Prometheus collectors of the sweep service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SweepsTotal tracks confirmed sweeps
	SweepsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sweep_transfers_total",
			Help: "Total number of confirmed sweep transfers",
		},
	)

	// SweepFailures tracks failed sweeps by error kind
	SweepFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweep_transfer_failures_total",
			Help: "Total number of failed sweep transfers",
		},
		[]string{"kind"},
	)

	// ProbeAttempts tracks endpoint liveness probes by endpoint and outcome
	ProbeAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweep_endpoint_probes_total",
			Help: "Total number of endpoint liveness probes",
		},
		[]string{"endpoint", "outcome"},
	)

	// SignerBalance tracks the last observed signer balance in ether
	SignerBalance = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sweep_signer_balance_ether",
			Help: "Last observed balance of the signing address in ether",
		},
	)

	// ConfirmLatency tracks the time between submission and first confirmation
	ConfirmLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sweep_confirm_latency_seconds",
			Help:    "Seconds between transfer submission and first confirmation",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)
