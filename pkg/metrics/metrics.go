package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "collections"

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	// Upserts counts persisted editor submissions by op (create|update).
	Upserts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "upserts_total", Help: "Number of collection creates and updates."},
		[]string{"op"},
	)
	Deletes = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "deletes_total", Help: "Number of deleted collections."},
	)
	// CorruptReads counts stored values that could not be decoded, by storage key.
	CorruptReads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "corrupt_reads_total", Help: "Number of malformed stored values treated as empty."},
		[]string{"key"},
	)
	ValidationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "validation_failures_total", Help: "Number of editor submissions rejected by validation."},
	)
	VersionConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "version_conflicts_total", Help: "Number of updates rejected because the record changed underneath."},
	)
)

var registerOnce sync.Once

// RegisterCollectors registers every collector with reg. Safe to call more than once.
func RegisterCollectors(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(RateLimitAllowed, RateLimitRejected, Upserts, Deletes, CorruptReads, ValidationFailures, VersionConflicts)
	})
}
