package resource

import (
	"bytes"
	"context"
	"testing"

	"github.com/apache/arrow/go/v10/arrow/array"
	"github.com/apache/arrow/go/v10/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocator(t *testing.T) {
	checked := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer checked.AssertSize(t, 0)

	c := NewController(Config{MemoryLimitBytes: 1 << 20})
	a := NewAllocator(checked, c)

	b := array.NewFloat64Builder(a)
	b.AppendValues(make([]float64, 1000), nil)
	arr := b.NewArray()
	b.Release()

	assert.Positive(t, a.Live())
	assert.Equal(t, a.Live(), c.MemoryUsage())
	assert.Equal(t, int64(checked.CurrentAlloc()), a.Live())

	require.NoError(t, c.AcquireMemory(context.Background(), 100))
	assert.Equal(t, a.Live()+100, c.MemoryUsage())
	c.ReleaseMemory(100)

	arr.Release()
	assert.Equal(t, int64(0), a.Live())
	assert.Equal(t, int64(0), c.MemoryUsage())
}

func TestAllocator_Reallocate(t *testing.T) {
	a := NewAllocator(nil, nil)

	buf := a.Allocate(64)
	assert.Equal(t, int64(64), a.Live())

	buf = a.Reallocate(256, buf)
	assert.Equal(t, int64(256), a.Live())

	a.Free(buf)
	assert.Equal(t, int64(0), a.Live())
}

func TestRateLimitedIO(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	ctx := context.Background()

	var sink bytes.Buffer
	w := NewRateLimitedWriter(ctx, &sink, c)
	n, err := w.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	r := NewRateLimitedReaderAt(ctx, bytes.NewReader(sink.Bytes()), c)
	p := make([]byte, 3)
	n, err = r.ReadAt(p, 2)
	require.NoError(t, err)
	assert.Equal(t, "llo", string(p[:n]))
}
