package table

import (
	"sync"
	"testing"

	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/memory"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/framego/testutil"
)

func checkedAllocator(t *testing.T) *memory.CheckedAllocator {
	t.Helper()
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	t.Cleanup(func() { mem.AssertSize(t, 0) })
	return mem
}

// newHandle builds a table indexed by "id" with a float64 "value" column
// (value[i] = i) and a string "label" column.
func newHandle(t *testing.T, mem memory.Allocator, ids []int64, opts ...Option) *Handle {
	t.Helper()

	n := len(ids)
	values := make([]float64, n)
	labels := make([]string, n)
	for i := range values {
		values[i] = float64(i)
		labels[i] = string(rune('a' + i%26))
	}

	rec := testutil.Record(mem,
		testutil.Column{Name: "id", Values: ids},
		testutil.Column{Name: "value", Values: values},
		testutil.Column{Name: "label", Values: labels},
	)
	defer rec.Release()

	h, err := FromTableWithMetadata(rec, 1, append([]Option{WithAllocator(mem)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(h.Release)
	return h
}

func newView(t *testing.T, parent Meta, start, stop int64, columns ...string) *View {
	t.Helper()
	v, err := NewView(parent, start, stop, columns...)
	require.NoError(t, err)
	t.Cleanup(v.Release)
	return v
}

func info(t *testing.T, m Meta) *Info {
	t.Helper()
	i, err := m.Info()
	require.NoError(t, err)
	t.Cleanup(i.Release)
	return i
}

func column(t *testing.T, i *Info, name string) arrow.Array {
	t.Helper()
	c, err := i.Column(name)
	require.NoError(t, err)
	return c
}

type mutation struct {
	column  string
	rows    int64
	inPlace bool
}

type repair struct {
	derived string
	rows    int64
	partial bool
}

type recorder struct {
	mu        sync.Mutex
	views     []int64
	mutations []mutation
	repairs   []repair
}

func (r *recorder) OnView(rows int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, rows)
}

func (r *recorder) OnMutation(column string, rows int64, inPlace bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations = append(r.mutations, mutation{column, rows, inPlace})
}

func (r *recorder) OnIndexRepair(derived string, rows int64, partial bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.repairs = append(r.repairs, repair{derived, rows, partial})
}
