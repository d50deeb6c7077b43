package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesEncryptedTotal counts messages encoded and persisted
	MessagesEncryptedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "encryptor_messages_encrypted_total",
		Help: "Total number of messages encoded and stored",
	})

	// LookupsTotal counts completed code lookups by result
	LookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "encryptor_lookups_total",
		Help: "Total number of code lookups",
	}, []string{"result"}) // "hit" or "miss"

	// ActionsSkippedTotal counts actions dropped because their input was not ready
	ActionsSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "encryptor_actions_skipped_total",
		Help: "Total number of encode or lookup actions skipped for empty or incomplete input",
	}, []string{"action"})

	// PersistenceFailuresTotal counts backend read and write failures
	PersistenceFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "encryptor_persistence_failures_total",
		Help: "Total number of failed reads or writes of the record collection",
	}, []string{"op"})

	// CorruptReadsTotal counts reads that found an unparseable collection
	CorruptReadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "encryptor_corrupt_reads_total",
		Help: "Total number of reads that found an unparseable stored collection",
	})

	// CollectionSize tracks the number of records last seen in the store
	CollectionSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "encryptor_collection_size",
		Help: "Number of records in the stored collection",
	})

	// StoreDuration tracks record store operation latency
	StoreDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "encryptor_store_duration_seconds",
		Help:    "Record store operation duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"}) // "append", "find" or "load"
)

// RecordLookup records a completed lookup
func RecordLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	LookupsTotal.WithLabelValues(result).Inc()
}

// RecordSkipped records a skipped action
func RecordSkipped(action string) {
	ActionsSkippedTotal.WithLabelValues(action).Inc()
}

// RecordPersistenceFailure records a failed backend operation
func RecordPersistenceFailure(op string) {
	PersistenceFailuresTotal.WithLabelValues(op).Inc()
}

// RecordStoreDuration records store operation duration
func RecordStoreDuration(op string, seconds float64) {
	StoreDuration.WithLabelValues(op).Observe(seconds)
}
