// Package metrics defines the evaluator's Prometheus metrics. Everything is
// registered in Registry, which the CLI dumps in text exposition format
// after a run.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace is the namespace every metric is defined under.
const Namespace = "zkstf"

// Registry holds all metrics created by this package.
var Registry = prometheus.NewRegistry()

// NewCounter creates a counter vector in Registry.
func NewCounter(name, subsystem, help string, labels []string) *prometheus.CounterVec {
	return promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace, Subsystem: subsystem, Name: name, Help: help,
	}, labels)
}

// NewHistogramWithBuckets creates a histogram vector with custom buckets in
// Registry.
func NewHistogramWithBuckets(name, subsystem, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return promauto.With(Registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace, Subsystem: subsystem, Name: name, Help: help, Buckets: buckets,
	}, labels)
}

// WriteTextfile writes the current value of every metric in Registry to
// path in the Prometheus text format, replacing the file atomically.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
