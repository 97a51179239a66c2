package zkvm

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/eth2030/zkstf/metrics"
)

const subsystem = "executor"

var (
	batchesTotal = metrics.NewCounter(
		"batches_total", subsystem,
		"Batches processed by outcome",
		[]string{"outcome"},
	)
	txsTotal = metrics.NewCounter(
		"transactions_total", subsystem,
		"Transactions processed by outcome",
		[]string{"outcome"},
	)
	txFailures = metrics.NewCounter(
		"transaction_failures_total", subsystem,
		"Failed transactions by error kind",
		[]string{"kind"},
	)
	batchDuration = metrics.NewHistogramWithBuckets(
		"batch_duration_seconds", subsystem,
		"Time to execute a batch, from first hash to record",
		nil,
		prometheus.ExponentialBuckets(0.0001, 4, 10),
	).WithLabelValues()
	batchSize = metrics.NewHistogramWithBuckets(
		"batch_size", subsystem,
		"Transactions per executed batch",
		nil,
		prometheus.ExponentialBuckets(1, 2, 14),
	).WithLabelValues()
)

// Outcome label values.
const (
	outcomeDone    = "done"
	outcomeAborted = "aborted"
	outcomeApplied = "applied"
	outcomeSkipped = "skipped"
	outcomeFailed  = "failed"
)
