package uniqip

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordFlush is called after each batch sort-and-flush.
	// records is the number of keys written, err is nil if successful.
	RecordFlush(records int, duration time.Duration, err error)

	// RecordMerge is called after each batch merge of a reduction pass.
	// inputs is the number of runs merged, records the number of keys
	// written to the merged output.
	RecordMerge(inputs int, records int64, duration time.Duration, err error)

	// RecordCount is called after the final counting stage.
	RecordCount(distinct uint64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFlush(int, time.Duration, error)        {}
func (NoopMetricsCollector) RecordMerge(int, int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordCount(uint64, time.Duration, error)     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	FlushCount      atomic.Int64
	FlushRecords    atomic.Int64
	FlushErrors     atomic.Int64
	FlushTotalNanos atomic.Int64
	MergeCount      atomic.Int64
	MergeRecords    atomic.Int64
	MergeErrors     atomic.Int64
	MergeTotalNanos atomic.Int64
	CountErrors     atomic.Int64
	Distinct        atomic.Uint64
}

// RecordFlush implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFlush(records int, duration time.Duration, err error) {
	b.FlushCount.Add(1)
	b.FlushRecords.Add(int64(records))
	b.FlushTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FlushErrors.Add(1)
	}
}

// RecordMerge implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMerge(inputs int, records int64, duration time.Duration, err error) {
	b.MergeCount.Add(1)
	b.MergeRecords.Add(records)
	b.MergeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.MergeErrors.Add(1)
	}
}

// RecordCount implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCount(distinct uint64, duration time.Duration, err error) {
	if err != nil {
		b.CountErrors.Add(1)
		return
	}
	b.Distinct.Store(distinct)
}
