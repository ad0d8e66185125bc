package framego

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// View, mutation and index repair events are reported by every table a
// Runtime creates or loads, including tables reached through views.
type MetricsCollector interface {
	// RecordView is called after a view over rows rows is constructed.
	RecordView(rows int64)

	// RecordMutation is called after a column write. inPlace reports whether
	// the write went straight into the shared buffers.
	RecordMutation(rows int64, inPlace bool)

	// RecordIndexRepair is called after a non-sliceable index was replaced.
	// partial is true when only a view's window was rewritten.
	RecordIndexRepair(rows int64, partial bool)

	// RecordLoad is called after each load. bytes is the stored size of the blob.
	RecordLoad(bytes int64, duration time.Duration, err error)

	// RecordStore is called after each store. bytes is the written payload size.
	RecordStore(bytes int64, duration time.Duration, err error)

	// RecordTensorWrite is called after each tensor write into a message.
	RecordTensorWrite(rows int64, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordView(int64)                        {}
func (NoopMetricsCollector) RecordMutation(int64, bool)              {}
func (NoopMetricsCollector) RecordIndexRepair(int64, bool)           {}
func (NoopMetricsCollector) RecordLoad(int64, time.Duration, error)  {}
func (NoopMetricsCollector) RecordStore(int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordTensorWrite(int64, error)          {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ViewCount         atomic.Int64
	ViewRows          atomic.Int64
	MutationCount     atomic.Int64
	MutationRows      atomic.Int64
	InPlaceMutations  atomic.Int64
	IndexRepairs      atomic.Int64
	PartialRepairs    atomic.Int64
	LoadCount         atomic.Int64
	LoadErrors        atomic.Int64
	LoadBytes         atomic.Int64
	LoadTotalNanos    atomic.Int64
	StoreCount        atomic.Int64
	StoreErrors       atomic.Int64
	StoreBytes        atomic.Int64
	StoreTotalNanos   atomic.Int64
	TensorWriteCount  atomic.Int64
	TensorWriteErrors atomic.Int64
	TensorWrittenRows atomic.Int64
}

// RecordView implements MetricsCollector.
func (b *BasicMetricsCollector) RecordView(rows int64) {
	b.ViewCount.Add(1)
	b.ViewRows.Add(rows)
}

// RecordMutation implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMutation(rows int64, inPlace bool) {
	b.MutationCount.Add(1)
	b.MutationRows.Add(rows)
	if inPlace {
		b.InPlaceMutations.Add(1)
	}
}

// RecordIndexRepair implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIndexRepair(rows int64, partial bool) {
	b.IndexRepairs.Add(1)
	if partial {
		b.PartialRepairs.Add(1)
	}
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(bytes int64, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadBytes.Add(bytes)
}

// RecordStore implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStore(bytes int64, duration time.Duration, err error) {
	b.StoreCount.Add(1)
	b.StoreTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.StoreErrors.Add(1)
		return
	}
	b.StoreBytes.Add(bytes)
}

// RecordTensorWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTensorWrite(rows int64, err error) {
	b.TensorWriteCount.Add(1)
	if err != nil {
		b.TensorWriteErrors.Add(1)
		return
	}
	b.TensorWrittenRows.Add(rows)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ViewCount:         b.ViewCount.Load(),
		ViewRows:          b.ViewRows.Load(),
		MutationCount:     b.MutationCount.Load(),
		MutationRows:      b.MutationRows.Load(),
		InPlaceMutations:  b.InPlaceMutations.Load(),
		IndexRepairs:      b.IndexRepairs.Load(),
		PartialRepairs:    b.PartialRepairs.Load(),
		LoadCount:         b.LoadCount.Load(),
		LoadErrors:        b.LoadErrors.Load(),
		LoadBytes:         b.LoadBytes.Load(),
		LoadAvgNanos:      avg(b.LoadTotalNanos.Load(), b.LoadCount.Load()),
		StoreCount:        b.StoreCount.Load(),
		StoreErrors:       b.StoreErrors.Load(),
		StoreBytes:        b.StoreBytes.Load(),
		StoreAvgNanos:     avg(b.StoreTotalNanos.Load(), b.StoreCount.Load()),
		TensorWriteCount:  b.TensorWriteCount.Load(),
		TensorWriteErrors: b.TensorWriteErrors.Load(),
		TensorWrittenRows: b.TensorWrittenRows.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ViewCount         int64
	ViewRows          int64
	MutationCount     int64
	MutationRows      int64
	InPlaceMutations  int64
	IndexRepairs      int64
	PartialRepairs    int64
	LoadCount         int64
	LoadErrors        int64
	LoadBytes         int64
	LoadAvgNanos      int64
	StoreCount        int64
	StoreErrors       int64
	StoreBytes        int64
	StoreAvgNanos     int64
	TensorWriteCount  int64
	TensorWriteErrors int64
	TensorWrittenRows int64
}

// observer forwards table events to a MetricsCollector.
type observer struct {
	mc MetricsCollector
}

func (o observer) OnView(rows int64) { o.mc.RecordView(rows) }

func (o observer) OnMutation(_ string, rows int64, inPlace bool) {
	o.mc.RecordMutation(rows, inPlace)
}

func (o observer) OnIndexRepair(_ string, rows int64, partial bool) {
	o.mc.RecordIndexRepair(rows, partial)
}
