package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Buffer maintenance counters and gauges, partitioned by bridge (and chain
// for cursor gauges).

var (
	BufferHotEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "interchain",
		Subsystem: "buffer",
		Name:      "hot_entries",
		Help:      "Entries currently held in the hot tier",
	}, []string{"bridge"})

	BufferMaintenanceEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "interchain",
		Subsystem: "buffer",
		Name:      "maintenance_entries",
		Help:      "Entries observed in the last maintenance cycle, by classification state",
	}, []string{"bridge", "state"})

	BufferEvictedEntries = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "interchain",
		Subsystem: "buffer",
		Name:      "evicted_entries",
		Help:      "Entries removed from the hot tier per maintenance cycle, by reason",
		Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
	}, []string{"bridge", "reason"})

	BufferEvictionSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "interchain",
		Subsystem: "buffer",
		Name:      "eviction_skipped_total",
		Help:      "Evictions skipped because the entry was modified concurrently",
	}, []string{"bridge"})

	BufferMessagesFinalizedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "interchain",
		Subsystem: "buffer",
		Name:      "messages_finalized_total",
		Help:      "Messages consolidated into their final state",
	}, []string{"bridge"})

	BufferTransfersFinalizedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "interchain",
		Subsystem: "buffer",
		Name:      "transfers_finalized_total",
		Help:      "Transfers persisted as part of finalized messages",
	}, []string{"bridge"})

	BufferRestoreTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "interchain",
		Subsystem: "buffer",
		Name:      "restore_total",
		Help:      "Cold-tier restore attempts on hot-tier miss",
	}, []string{"bridge", "result"})

	BufferCursor = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "interchain",
		Subsystem: "buffer",
		Name:      "cursor",
		Help:      "Checkpoint cursor positions per bridge and chain",
	}, []string{"bridge", "chain", "direction"})

	BufferMaintenanceDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "interchain",
		Subsystem: "buffer",
		Name:      "maintenance_duration_seconds",
		Help:      "Duration of one full maintenance cycle",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	BufferMaintenanceErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "interchain",
		Subsystem: "buffer",
		Name:      "maintenance_errors_total",
		Help:      "Maintenance cycles that aborted with an error",
	})

	NotifierPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "interchain",
		Subsystem: "notifier",
		Name:      "published_total",
		Help:      "Finalized messages published to the notification stream",
	}, []string{"bridge"})

	NotifierErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "interchain",
		Subsystem: "notifier",
		Name:      "errors_total",
		Help:      "Failed publishes to the notification stream",
	})
)
