package tensor

import (
	"testing"

	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	input, err := Zeros(mem, arrow.PrimitiveTypes.Float32, 3, 4)
	require.NoError(t, err)
	ids, err := Zeros(mem, arrow.PrimitiveTypes.Int32, 3, 3)
	require.NoError(t, err)

	m, err := NewMemory(3, map[string]*Tensor{"input__0": input, "seq_ids": ids})
	require.NoError(t, err)
	defer m.Release()

	assert.Equal(t, int64(3), m.Count())
	assert.True(t, m.Has("seq_ids"))
	assert.False(t, m.Has("input_ids"))
	assert.Equal(t, []string{"input__0", "seq_ids"}, m.Names())

	got, err := m.Get("input__0")
	require.NoError(t, err)
	assert.Same(t, input, got)

	_, err = m.Get("input_ids")
	assert.ErrorIs(t, err, ErrMissingTensor)

	t.Run("set replaces and releases", func(t *testing.T) {
		next, err := Zeros(mem, arrow.PrimitiveTypes.Float32, 3, 2)
		require.NoError(t, err)
		require.NoError(t, m.Set("input__0", next))

		got, err := m.Get("input__0")
		require.NoError(t, err)
		assert.Equal(t, []int64{3, 2}, got.Shape())
	})

	t.Run("set checks rows", func(t *testing.T) {
		short, err := Zeros(mem, arrow.PrimitiveTypes.Float32, 2, 2)
		require.NoError(t, err)
		defer short.Release()

		assert.ErrorIs(t, m.Set("input__0", short), ErrShapeMismatch)
	})
}

func TestNewMemory_RowMismatch(t *testing.T) {
	a, err := FromInt64s([]int64{1, 2, 3})
	require.NoError(t, err)

	_, err = NewMemory(2, map[string]*Tensor{"a": a})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = NewMemory(-1, nil)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestMemory_RetainRelease(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	a, err := Zeros(mem, arrow.PrimitiveTypes.Int64, 2)
	require.NoError(t, err)

	m, err := NewMemory(2, map[string]*Tensor{"a": a})
	require.NoError(t, err)

	m.Retain()
	m.Release()
	assert.True(t, m.Has("a"))

	m.Release()
	assert.False(t, m.Has("a"))
}
