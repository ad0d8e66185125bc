package framego

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/framego/table"
)

var (
	_ MetricsCollector = NoopMetricsCollector{}
	_ MetricsCollector = (*BasicMetricsCollector)(nil)
	_ table.Observer   = observer{}
)

func TestBasicMetricsCollector(t *testing.T) {
	b := &BasicMetricsCollector{}
	boom := errors.New("boom")

	b.RecordLoad(100, 2*time.Millisecond, nil)
	b.RecordLoad(50, 4*time.Millisecond, boom)
	b.RecordStore(80, time.Millisecond, nil)
	b.RecordTensorWrite(4, nil)
	b.RecordTensorWrite(4, boom)

	obs := observer{mc: b}
	obs.OnView(10)
	obs.OnMutation("value", 10, true)
	obs.OnMutation("label", 10, false)
	obs.OnIndexRepair("_index_id", 5, true)

	stats := b.GetStats()
	assert.Equal(t, BasicMetricsStats{
		ViewCount:         1,
		ViewRows:          10,
		MutationCount:     2,
		MutationRows:      20,
		InPlaceMutations:  1,
		IndexRepairs:      1,
		PartialRepairs:    1,
		LoadCount:         2,
		LoadErrors:        1,
		LoadBytes:         100,
		LoadAvgNanos:      (3 * time.Millisecond).Nanoseconds(),
		StoreCount:        1,
		StoreBytes:        80,
		StoreAvgNanos:     time.Millisecond.Nanoseconds(),
		TensorWriteCount:  2,
		TensorWriteErrors: 1,
		TensorWrittenRows: 4,
	}, stats)
}

func TestBasicMetricsCollector_Empty(t *testing.T) {
	stats := (&BasicMetricsCollector{}).GetStats()
	assert.Zero(t, stats.LoadAvgNanos)
	assert.Zero(t, stats.StoreAvgNanos)
}
