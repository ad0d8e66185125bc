package message

import (
	"testing"

	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/framego/table"
	"github.com/hupe1980/framego/tensor"
	"github.com/hupe1980/framego/testutil"
)

// fixture returns a table of rows rows and a Memory of tensor rows where
// seq_ids[i] = (i*rows/tensorRows, 0, 1) and input__0 is tensorRows x 4.
func fixture(t *testing.T, rows, tensorRows int) (*table.Handle, *tensor.Memory) {
	t.Helper()
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	t.Cleanup(func() { mem.AssertSize(t, 0) })

	values := make([]float64, rows)
	for i := range values {
		values[i] = float64(i)
	}
	rec := testutil.Record(mem, testutil.Column{Name: "value", Values: values})
	defer rec.Release()

	h, err := table.Adopt(rec, table.WithAllocator(mem))
	require.NoError(t, err)
	t.Cleanup(h.Release)

	ids := make([]int32, 0, tensorRows*3)
	for i := 0; i < tensorRows; i++ {
		ids = append(ids, int32(i*rows/tensorRows), 0, 1)
	}
	seq, err := tensor.FromInt32s(ids, int64(tensorRows), 3)
	require.NoError(t, err)
	input, err := tensor.Zeros(mem, arrow.PrimitiveTypes.Float32, int64(tensorRows), 4)
	require.NoError(t, err)

	m, err := tensor.NewMemory(int64(tensorRows), map[string]*tensor.Tensor{"seq_ids": seq, "input__0": input})
	require.NoError(t, err)
	t.Cleanup(m.Release)

	return h, m
}

func TestNew_OutOfRange(t *testing.T) {
	h, m := fixture(t, 50, 50)

	tests := []struct {
		name                  string
		messOffset, messCount int64
		offset, count         int64
	}{
		{"tensor past end", 0, 10, 40, 11},
		{"message past end", 45, 6, 0, 10},
		{"negative tensor offset", 0, 10, -1, 5},
		{"negative message count", 0, -2, 0, 10},
		{"rest past end", 0, 10, 51, Rest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(h, tt.messOffset, tt.messCount, m, tt.offset, tt.count, "")
			assert.ErrorIs(t, err, ErrOutOfRange)

			var werr *WindowError
			assert.ErrorAs(t, err, &werr)
		})
	}
}

func TestNew_RoundTripAtBoundary(t *testing.T) {
	h, m := fixture(t, 50, 50)

	msg, err := New(h, 40, 10, m, 40, 10, "seq_ids")
	require.NoError(t, err)
	defer msg.Release()

	src := testutil.NewRNG(4711).UniformRows(10, 4)
	in, err := tensor.FromFloat32s(src, 10, 4)
	require.NoError(t, err)
	require.NoError(t, msg.SetTensor("input__0", in))

	out, err := msg.Tensor("input__0")
	require.NoError(t, err)
	defer out.Release()

	got, err := out.Float32s()
	require.NoError(t, err)
	assert.Equal(t, src, got)

	full, err := m.Get("input__0")
	require.NoError(t, err)
	all, err := full.Float32s()
	require.NoError(t, err)
	assert.Equal(t, src, all[40*4:])
	assert.Equal(t, make([]float32, 40*4), all[:40*4])
}

func TestNew_Rest(t *testing.T) {
	h, m := fixture(t, 30, 20)

	msg, err := New(h, 5, Rest, m, 4, Rest, "")
	require.NoError(t, err)
	defer msg.Release()

	assert.Equal(t, int64(25), msg.MessCount())
	assert.Equal(t, int64(16), msg.Count())
	assert.Equal(t, DefaultIDTensor, msg.IDTensorName())
}

func TestNew_MissingIDTensor(t *testing.T) {
	h, m := fixture(t, 10, 10)

	_, err := New(h, 0, Rest, m, 0, Rest, "ids")
	assert.ErrorIs(t, err, ErrMissingTensor)
}

func TestTensorWindow(t *testing.T) {
	h, m := fixture(t, 50, 50)

	msg, err := New(h, 10, 20, m, 10, 20, "")
	require.NoError(t, err)
	defer msg.Release()

	seq, err := msg.Tensor("seq_ids")
	require.NoError(t, err)
	defer seq.Release()
	assert.Equal(t, int64(20), seq.Rows())

	first, err := seq.Int64At(0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(10), first)

	short, err := tensor.FromInt32s(make([]int32, 15*3), 15, 3)
	require.NoError(t, err)
	assert.ErrorIs(t, msg.SetTensor("seq_ids", short), ErrShapeMismatch)

	wide, err := tensor.FromInt32s(make([]int32, 20*2), 20, 2)
	require.NoError(t, err)
	assert.ErrorIs(t, msg.SetTensor("seq_ids", wide), ErrShapeMismatch)

	wrongType, err := tensor.FromInt64s(make([]int64, 20*3), 20, 3)
	require.NoError(t, err)
	assert.ErrorIs(t, msg.SetTensor("seq_ids", wrongType), tensor.ErrDTypeMismatch)

	_, err = msg.Tensor("input_ids")
	assert.ErrorIs(t, err, ErrMissingTensor)
}

func TestMeta(t *testing.T) {
	h, m := fixture(t, 50, 50)

	msg, err := New(h, 10, 5, m, 0, 50, "")
	require.NoError(t, err)
	defer msg.Release()

	info, err := msg.Info("value")
	require.NoError(t, err)
	col, err := info.Column("value")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 11, 12, 13, 14}, testutil.Float64s(col))
	info.Release()

	scores := testutil.Array(memory.DefaultAllocator, []float64{1, 1, 1, 1, 1})
	defer scores.Release()
	require.NoError(t, msg.SetMeta(t.Context(), "score", scores))

	hi, err := h.Info()
	require.NoError(t, err)
	defer hi.Release()
	col, err = hi.Column("score")
	require.NoError(t, err)
	assert.Equal(t, 45, col.NullN())
	assert.True(t, col.IsValid(10))
	assert.True(t, col.IsNull(15))
}

func TestSlice(t *testing.T) {
	// two tensor rows per message row
	h, m := fixture(t, 10, 20)

	msg, err := New(h, 0, Rest, m, 0, Rest, "")
	require.NoError(t, err)
	defer msg.Release()

	sub, err := msg.Slice(4, 10)
	require.NoError(t, err)
	defer sub.Release()

	assert.Equal(t, int64(4), sub.Offset())
	assert.Equal(t, int64(6), sub.Count())
	assert.Equal(t, int64(2), sub.MessOffset())
	assert.Equal(t, int64(3), sub.MessCount())

	nested, err := sub.Slice(2, 4)
	require.NoError(t, err)
	defer nested.Release()
	assert.Equal(t, int64(6), nested.Offset())
	assert.Equal(t, int64(3), nested.MessOffset())
	assert.Equal(t, int64(1), nested.MessCount())

	empty, err := msg.Slice(3, 3)
	require.NoError(t, err)
	defer empty.Release()
	assert.Equal(t, int64(0), empty.Count())
	assert.Equal(t, int64(0), empty.MessCount())

	_, err = msg.Slice(5, 21)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestRelease_Twice(t *testing.T) {
	h, m := fixture(t, 10, 10)

	msg, err := New(h, 0, 5, m, 0, 5, "")
	require.NoError(t, err)
	msg.Release()
	msg.Release()

	assert.Equal(t, int64(10), h.Count())
	i, err := h.Info()
	require.NoError(t, err)
	i.Release()

	in, err := m.Get("input__0")
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 4}, in.Shape())
}
